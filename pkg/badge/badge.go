// Package badge defines the printable unit that every renderer draws.
//
// A [Badge] couples identifying content (number, primary and secondary text,
// colors, an optional background image) with a physical size. The pixel
// dimensions of a rendered badge are derived from that size and never stored:
//
//	b := badge.New(1, "Team A", "Oklahoma State University")
//	w, h := b.PixelSize() // 750 x 938 at the defaults
//
// The size is the only state that changes after import. It is changed through
// [Badge.SetSize], which bumps [Badge.Revision] so that raster caches keyed on
// the badge never serve an image rendered for the previous size.
package badge

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

// Default physical size. Width is in the caller's unit (inches for the CLI),
// proportion is height/width and resolution is pixels per unit.
const (
	DefaultWidth      = 2.5
	DefaultProportion = 1.25
	DefaultResolution = 300.0
)

// NoNumber suppresses the number on renderers that draw one.
const NoNumber = -1

// ExtraSeparator splits "key::value" lines in [Badge.Extra].
const ExtraSeparator = "::"

var (
	defaultBackground     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	defaultTextBackground = color.NRGBA{A: 0xff}
	defaultText           = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Badge is one printable unit: a name badge or a certificate.
type Badge struct {
	Number    int    // NoNumber (or any negative value) hides the number
	Primary   string // team or person name
	Secondary string // institution or subtitle

	Background     image.Image // shared, read-only; may be nil
	BackgroundPath string      // source of Background, empty for in-memory images

	BackgroundColor     color.NRGBA
	TextBackgroundColor color.NRGBA
	TextColor           color.NRGBA

	Fit    Fit
	Anchor Anchor

	// Extra holds renderer-specific auxiliary lines, typically "key::value".
	Extra []string

	width      float64
	proportion float64
	resolution float64
	revision   uint64
}

// New creates a badge with the default size, a white background, black text
// bands and white text.
func New(number int, primary, secondary string) *Badge {
	return &Badge{
		Number:              number,
		Primary:             primary,
		Secondary:           secondary,
		BackgroundColor:     defaultBackground,
		TextBackgroundColor: defaultTextBackground,
		TextColor:           defaultText,
		Fit:                 FitWidth,
		Anchor:              Middle,
		width:               DefaultWidth,
		proportion:          DefaultProportion,
		resolution:          DefaultResolution,
	}
}

// Width returns the physical width.
func (b *Badge) Width() float64 { return b.width }

// Proportion returns height divided by width.
func (b *Badge) Proportion() float64 { return b.proportion }

// Resolution returns pixels per physical unit.
func (b *Badge) Resolution() float64 { return b.resolution }

// Height returns the physical height.
func (b *Badge) Height() float64 { return b.proportion * b.width }

// Revision changes every time the physical size changes.
func (b *Badge) Revision() uint64 { return b.revision }

// SetSize resets the physical size. It always bumps the revision, even when
// the values are unchanged, so callers can use it to force a re-render.
func (b *Badge) SetSize(width, proportion, resolution float64) {
	b.width = width
	b.proportion = proportion
	b.resolution = resolution
	b.revision++
}

// PixelSize returns the raster dimensions. Each side is rounded to the nearest
// pixel and clamped to at least 1.
func (b *Badge) PixelSize() (w, h int) {
	w = clampPixels(b.width * b.resolution)
	h = clampPixels(b.proportion * b.width * b.resolution)
	return w, h
}

// Bounds returns the raster rectangle anchored at the origin.
func (b *Badge) Bounds() image.Rectangle {
	w, h := b.PixelSize()
	return image.Rect(0, 0, w, h)
}

func clampPixels(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(v))
}

// HasNumber reports whether the number should be drawn.
func (b *Badge) HasNumber() bool { return b.Number >= 0 }

// NumberText formats the number as at least two digits.
func (b *Badge) NumberText() string {
	if !b.HasNumber() {
		return ""
	}
	return fmt.Sprintf("%02d", b.Number)
}

// Name identifies the badge in logs and file names: "<number>-<primary>".
func (b *Badge) Name() string {
	return fmt.Sprintf("%d-%s", b.Number, b.Primary)
}

// ExtraValue returns the value of the last "key::value" extra line, so a
// later line overrides an earlier one.
func (b *Badge) ExtraValue(key string) (string, bool) {
	prefix := key + ExtraSeparator
	for i := len(b.Extra) - 1; i >= 0; i-- {
		line := strings.TrimSpace(b.Extra[i])
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):], true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (b *Badge) String() string {
	w, h := b.PixelSize()
	return fmt.Sprintf("%s (%dx%d)", b.Name(), w, h)
}
