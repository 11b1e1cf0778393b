// Package pipeline runs badge batches: render every badge of a roster, then
// write the rasters to image files or pack them onto document pages.
//
// The CLI, the preview server and the terminal UI share this package so that
// defaults, caching and cancellation behave the same everywhere.
//
// # Batches
//
// A batch runs on one dedicated goroutine. The render and pack steps are
// synchronous; between badges the batch polls a cancel flag and its context.
// A cancelled batch stops after the current badge and returns the partial
// [Result] with Cancelled set and no error. Only sink failures abort a batch,
// with code IO_ERROR; files already written are left in place.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	r, err := runner.Prepare(builtin.Registry(), opts)
//	if err != nil {
//	    return err
//	}
//	job := runner.Start(ctx, func(ctx context.Context, p *pipeline.Progress) (*pipeline.Result, error) {
//	    return runner.ExportImages(ctx, r, badges, dirSink, p)
//	})
//	res, err := job.Wait()
package pipeline

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/layout"
	"github.com/osumercury/badgemaker/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultRenderer is the renderer used when none is named.
	DefaultRenderer = "classic"

	// DefaultPage is the page preset for PDF output.
	DefaultPage = layout.DefaultPage

	// DefaultOrientation is the page orientation for PDF output.
	DefaultOrientation = "portrait"

	// DefaultUnits is the unit of badge size, margin and spacing.
	DefaultUnits = "in"

	// DefaultMargin is the page margin in DefaultUnits.
	DefaultMargin = 0.25

	// DefaultSpacing is the gap between badges in DefaultUnits.
	DefaultSpacing = 0.05

	// DefaultJPEGQuality is used for JPEG files and lossy PDF embedding.
	DefaultJPEGQuality = sink.DefaultJPEGQuality

	// DefaultQuality is the resampling quality of final output.
	DefaultQuality = "high"
)

// Format constants for output formats.
const (
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatJPG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, jpg, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Batch Configuration
// =============================================================================

// Options contains all configuration for an export batch.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Renderer options
	Renderer   string            `json:"renderer,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Quality    string            `json:"quality,omitempty"` // "high" or "fast"
	NoCache    bool              `json:"no_cache,omitempty"`

	// Output options
	Formats     []string `json:"formats,omitempty"`
	OutputDir   string   `json:"output_dir,omitempty"`
	PDFPath     string   `json:"pdf_path,omitempty"`
	JPEGQuality int      `json:"jpeg_quality,omitempty"`
	Lossless    bool     `json:"lossless,omitempty"` // embed PNG instead of JPEG in PDFs

	// Page options
	Page        string  `json:"page,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
	Units       string  `json:"units,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
	Spacing     float64 `json:"spacing,omitempty"`

	// MarginSet and SpacingSet mark Margin and Spacing as explicit, so zero
	// values are kept instead of defaulted.
	MarginSet  bool `json:"-"`
	SpacingSet bool `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetExportDefaults fills unset fields. Margin and spacing are only defaulted
// when both are zero and neither is marked as set, so an explicit zero
// spacing with a margin is kept.
func (o *Options) SetExportDefaults() {
	if o.Renderer == "" {
		o.Renderer = DefaultRenderer
	}
	if o.Quality == "" {
		o.Quality = DefaultQuality
	}
	if len(o.Formats) == 0 {
		if o.OutputDir != "" {
			o.Formats = append(o.Formats, FormatPNG)
		}
		if o.PDFPath != "" {
			o.Formats = append(o.Formats, FormatPDF)
		}
	}
	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.Page == "" {
		o.Page = DefaultPage
	}
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
	if o.Units == "" {
		o.Units = DefaultUnits
	}
	if o.Margin == 0 && o.Spacing == 0 && !o.MarginSet && !o.SpacingSet {
		o.Margin = DefaultMargin
		o.Spacing = DefaultSpacing
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport applies defaults and checks that every requested output
// has a destination and that the page parameters resolve.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	if len(o.Formats) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no output requested")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if (o.WantsFormat(FormatPNG) || o.WantsFormat(FormatJPG)) && o.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "image output requires an output directory")
	}
	if o.WantsFormat(FormatPNG) && o.WantsFormat(FormatJPG) {
		return errors.New(errors.ErrCodeInvalidInput, "choose one of png or jpg per output directory")
	}
	if o.WantsFormat(FormatPDF) && o.PDFPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "pdf output requires a file path")
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "JPEG quality %d out of range 1-100", o.JPEGQuality)
	}
	if _, _, err := o.PageSpec(); err != nil {
		return err
	}
	return nil
}

// WantsFormat reports whether format was requested.
func (o *Options) WantsFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// ImageFormat returns the per-badge file format, if any was requested.
func (o *Options) ImageFormat() (sink.Format, bool) {
	switch {
	case o.WantsFormat(FormatJPG):
		return sink.JPEG, true
	case o.WantsFormat(FormatPNG):
		return sink.PNG, true
	}
	return "", false
}

// PageSpec resolves the page parameters. The returned units are also the
// units of the badges' physical size.
func (o *Options) PageSpec() (layout.PageSpec, layout.Units, error) {
	orient, err := layout.ParseOrientation(o.Orientation)
	if err != nil {
		return layout.PageSpec{}, 0, err
	}
	units, err := layout.ParseUnits(o.Units)
	if err != nil {
		return layout.PageSpec{}, 0, err
	}
	spec, err := layout.NewPageSpec(o.Page, orient, units, o.Margin, o.Spacing)
	if err != nil {
		return layout.PageSpec{}, 0, err
	}
	return spec, units, nil
}

// String summarizes the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("renderer=%s formats=%v page=%s/%s", o.Renderer, o.Formats, o.Page, o.Orientation)
}
