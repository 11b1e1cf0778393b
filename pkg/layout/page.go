// Package layout arranges rendered badges on printable pages.
//
// All lengths here are in PDF points (1/72 inch). Margin and spacing are
// converted from the user's units with [ToPoints] before packing; the packer
// itself is unit-agnostic.
package layout

import (
	"sort"
	"strings"

	"github.com/osumercury/badgemaker/pkg/errors"
)

// PointsPerInch is the PDF user-space resolution.
const PointsPerInch = 72.0

// MillimetersPerInch converts metric input.
const MillimetersPerInch = 25.4

// Size is a width and height in points.
type Size struct {
	W, H float64
}

// DefaultPage is used when no preset is named.
const DefaultPage = "LETTER"

var presets = map[string]Size{
	"A0":     {W: 2383.94, H: 3370.39},
	"A1":     {W: 1683.78, H: 2383.94},
	"A2":     {W: 1190.55, H: 1683.78},
	"A3":     {W: 841.89, H: 1190.55},
	"A4":     {W: 595.28, H: 841.89},
	"A5":     {W: 419.53, H: 595.28},
	"A6":     {W: 297.64, H: 419.53},
	"LETTER": {W: 612, H: 792},
	"LEGAL":  {W: 612, H: 1008},
}

// PageSize returns the portrait size of a named preset (case-insensitive).
func PageSize(name string) (Size, error) {
	if name == "" {
		name = DefaultPage
	}
	s, ok := presets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Size{}, errors.New(errors.ErrCodeInvalidPage, "unknown page size %q (available: %s)", name, strings.Join(PageNames(), ", "))
	}
	return s, nil
}

// PageNames lists the presets in alphabetical order.
func PageNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Orientation of the page.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// ParseOrientation accepts "portrait" or "landscape".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	}
	return Portrait, errors.New(errors.ErrCodeInvalidPage, "unknown orientation %q", s)
}

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// Apply swaps width and height for landscape pages.
func (o Orientation) Apply(s Size) Size {
	if o == Landscape {
		return Size{W: s.H, H: s.W}
	}
	return s
}

// Units of user-supplied lengths.
type Units int

const (
	Inches Units = iota
	Millimeters
	Centimeters
	Points
)

// ParseUnits accepts in, cm, mm or pt, and their spelled-out names.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "in", "inch", "inches":
		return Inches, nil
	case "mm", "millimeter", "millimeters":
		return Millimeters, nil
	case "cm", "centimeter", "centimeters":
		return Centimeters, nil
	case "pt", "point", "points":
		return Points, nil
	}
	return Inches, errors.New(errors.ErrCodeInvalidPage, "unknown units %q", s)
}

func (u Units) String() string {
	switch u {
	case Millimeters:
		return "mm"
	case Centimeters:
		return "cm"
	case Points:
		return "pt"
	}
	return "in"
}

// ToPoints converts v from u to points.
func ToPoints(v float64, u Units) float64 {
	switch u {
	case Millimeters:
		return v * PointsPerInch / MillimetersPerInch
	case Centimeters:
		return v * PointsPerInch * 10 / MillimetersPerInch
	case Points:
		return v
	}
	return v * PointsPerInch
}

// PageSpec is a page ready for packing: oriented size plus margin and
// spacing in points.
type PageSpec struct {
	Size    Size
	Margin  float64
	Spacing float64
}

// NewPageSpec resolves a preset, applies the orientation and converts margin
// and spacing from units.
func NewPageSpec(preset string, o Orientation, u Units, margin, spacing float64) (PageSpec, error) {
	s, err := PageSize(preset)
	if err != nil {
		return PageSpec{}, err
	}
	if margin < 0 || spacing < 0 {
		return PageSpec{}, errors.New(errors.ErrCodeInvalidPage, "margin and spacing must not be negative")
	}
	return PageSpec{
		Size:    o.Apply(s),
		Margin:  ToPoints(margin, u),
		Spacing: ToPoints(spacing, u),
	}, nil
}
