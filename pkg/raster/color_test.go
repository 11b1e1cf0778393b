package raster

import (
	"errors"
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  color.NRGBA
	}{
		{"ff7300", color.NRGBA{R: 0xff, G: 0x73, B: 0x00, A: 0xff}},
		{"#ff7300", color.NRGBA{R: 0xff, G: 0x73, B: 0x00, A: 0xff}},
		{"FFFFFF", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{"80102030", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}},
		{"#00abcdef", color.NRGBA{R: 0xab, G: 0xcd, B: 0xef, A: 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	inputs := []string{"", "#", "fff", "12345", "1234567", "123456789", "gg0000", "#zz112233", "+12345", "ff 000"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := ParseColor(in)
			if err == nil {
				t.Fatalf("ParseColor(%q) should fail", in)
			}
			var pe *ColorParseError
			if !errors.As(err, &pe) {
				t.Errorf("error should be *ColorParseError, got %T", err)
			}
			if got != Black {
				t.Errorf("ParseColor(%q) = %v, want opaque black", in, got)
			}
			if ColorOrBlack(in) != Black {
				t.Errorf("ColorOrBlack(%q) should be opaque black", in)
			}
		})
	}
}

func TestColorRoundTrip(t *testing.T) {
	values := []uint32{0xff000000, 0xffffffff, 0xff123456, 0x00000000, 0x7fabcdef, 0x01020304}

	for _, argb := range values {
		c := color.NRGBA{R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb), A: uint8(argb >> 24)}
		s := FormatColor(c)
		for _, in := range []string{s, "#" + s} {
			got, err := ParseColor(in)
			if err != nil {
				t.Fatalf("ParseColor(%q) error: %v", in, err)
			}
			if ARGB(got) != argb {
				t.Errorf("round trip %08x via %q = %08x", argb, in, ARGB(got))
			}
		}
	}
}

func TestFormatColor(t *testing.T) {
	if got := FormatColor(color.NRGBA{R: 0xff, G: 0x73, A: 0xff}); got != "ff7300" {
		t.Errorf("FormatColor(opaque) = %q, want ff7300", got)
	}
	if got := FormatColor(color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}); got != "80102030" {
		t.Errorf("FormatColor(translucent) = %q, want 80102030", got)
	}
}
