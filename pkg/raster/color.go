package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Black is the substitute for any color that fails to parse.
var Black = color.NRGBA{A: 0xff}

// ColorParseError reports a hex color that is neither 6-digit RGB nor 8-digit
// ARGB.
type ColorParseError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *ColorParseError) Error() string {
	return fmt.Sprintf("parse color %q: %s", e.Input, e.Reason)
}

// ParseColor parses "rrggbb" (opaque) or "aarrggbb", with or without a
// leading '#'. Alpha comes first in the 8-digit form.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Black, &ColorParseError{Input: s, Reason: fmt.Sprintf("want 6 or 8 hex digits, got %d", len(hex))}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black, &ColorParseError{Input: s, Reason: "invalid hex digit"}
	}
	c := color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
	if len(hex) == 8 {
		c.A = uint8(v >> 24)
	}
	return c, nil
}

// ColorOrBlack parses s and substitutes opaque black on failure.
func ColorOrBlack(s string) color.NRGBA {
	c, _ := ParseColor(s)
	return c
}

// ARGB packs c as 0xAARRGGBB.
func ARGB(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// FormatColor is the inverse of ParseColor: 6 lower-case digits for opaque
// colors, 8 digits (ARGB) otherwise.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("%06x", ARGB(c)&0xffffff)
	}
	return fmt.Sprintf("%08x", ARGB(c))
}
