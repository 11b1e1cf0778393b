package badge

import (
	"fmt"
	"strings"
)

// Fit selects how a background image is scaled into the badge.
type Fit int

const (
	FitWidth  Fit = iota // image width = badge width
	FitHeight            // image height = middle band height
	Fill                 // stretched to the badge dimensions
)

var fitNames = map[Fit]string{
	FitWidth:  "fit_width",
	FitHeight: "fit_height",
	Fill:      "fill",
}

// String returns the record spelling used in CSV and TOML files.
func (f Fit) String() string {
	if s, ok := fitNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Fit(%d)", int(f))
}

// ParseFit parses "fit_width", "fit_height" or "fill" (case-insensitive;
// dashes are accepted in place of underscores).
func ParseFit(s string) (Fit, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for f, name := range fitNames {
		if name == norm {
			return f, nil
		}
	}
	return FitWidth, fmt.Errorf("unknown background fit: %q", s)
}

// Anchor selects where a scaled background image sits vertically.
type Anchor int

const (
	Middle Anchor = iota
	Bottom
	Top
)

var anchorNames = map[Anchor]string{
	Middle: "middle",
	Bottom: "bottom",
	Top:    "top",
}

// String returns the lower-case anchor name.
func (a Anchor) String() string {
	if s, ok := anchorNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Anchor(%d)", int(a))
}

// ParseAnchor parses "top", "middle" or "bottom" (case-insensitive).
func ParseAnchor(s string) (Anchor, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for a, name := range anchorNames {
		if name == norm {
			return a, nil
		}
	}
	return Middle, fmt.Errorf("unknown vertical anchor: %q", s)
}

// OffsetY returns the top edge of an image of height h anchored inside a
// badge of height badgeH.
func (a Anchor) OffsetY(badgeH, h int) int {
	switch a {
	case Top:
		return 0
	case Bottom:
		return badgeH - h
	default:
		return badgeH/2 - h/2
	}
}
