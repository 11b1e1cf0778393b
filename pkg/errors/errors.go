// Package errors provides structured error types for badgemaker.
//
// The error taxonomy has four tiers:
//   - Configuration errors (bad property value, unknown key): reported, the
//     previous value is retained and the operation continues
//   - Instruction errors (scripted renderer only): reported with a line
//     number, that instruction is skipped
//   - Resource errors (missing or undecodable image): reported, the dependent
//     drawing step is skipped
//   - Batch errors (cannot write output): the whole batch aborts
//
// Only batch errors are returned to the top of a command. Everything else is
// logged at the boundary where it happens.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownProperty, "unknown property: %s", key)
//	if errors.Is(err, errors.ErrCodeUnknownProperty) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPage     Code = "INVALID_PAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidScript   Code = "INVALID_SCRIPT"
	ErrCodeUnknownRenderer Code = "UNKNOWN_RENDERER"

	// Configuration errors
	ErrCodeInvalidProperty Code = "INVALID_PROPERTY"
	ErrCodeUnknownProperty Code = "UNKNOWN_PROPERTY"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeResource     Code = "RESOURCE_ERROR"

	// Batch errors
	ErrCodeIO        Code = "IO_ERROR"
	ErrCodeCancelled Code = "CANCELLED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err belongs to the batch tier of the taxonomy.
// Configuration, instruction and resource errors are recoverable.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeIO, ErrCodeInternal:
		return true
	case "":
		return err != nil
	}
	return false
}
