package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFilenameLength bounds generated output names. Most filesystems cap a
// single component at 255 bytes; the extension needs room too.
const maxFilenameLength = 200

// ValidateFilename validates a single output file name component.
//
// Validation rules:
//   - Name cannot be empty
//   - No control characters or null bytes
//   - No path separators
//   - Not "." or ".."
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}
	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidPath, "file name too long (max %d characters)", maxFilenameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "file name cannot be %q", name)
	}
	return nil
}

// SafeFilename rewrites name so that it passes [ValidateFilename].
// Separators and characters that are awkward on common filesystems become
// underscores, control characters are dropped and the result is truncated.
// An empty result becomes "badge".
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsControl(r):
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxFilenameLength {
		out = out[:maxFilenameLength]
		for !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
	}
	if out == "" || out == "." || out == ".." {
		return "badge"
	}
	return out
}

// ValidatePath validates a resource path supplied by an untrusted caller
// (for example an HTTP request naming a logo file).
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
