package io

import (
	"context"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/raster"
)

// Size is the physical badge size applied to every imported badge. Width and
// height share a unit; resolution is pixels per that unit.
type Size struct {
	Width      float64 `json:"width" toml:"width"`
	Height     float64 `json:"height" toml:"height"`
	Resolution float64 `json:"resolution" toml:"resolution"`
}

// DefaultSize is 2.5 x 3.125 at 300 pixels per unit.
func DefaultSize() Size {
	return Size{
		Width:      badge.DefaultWidth,
		Height:     badge.DefaultWidth * badge.DefaultProportion,
		Resolution: badge.DefaultResolution,
	}
}

// Validate rejects non-positive dimensions.
func (s Size) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Resolution <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "badge size must be positive (got %gx%g at %g)", s.Width, s.Height, s.Resolution)
	}
	return nil
}

// Apply sets the size on b.
func (s Size) Apply(b *badge.Badge) {
	b.SetSize(s.Width, s.Height/s.Width, s.Resolution)
}

// SizeOf returns the size of b.
func SizeOf(b *badge.Badge) Size {
	return Size{Width: b.Width(), Height: b.Height(), Resolution: b.Resolution()}
}

// Record is the serialized form of a badge, shared by every format and by
// the MongoDB source.
type Record struct {
	Number              int      `json:"number" toml:"number" bson:"number"`
	Primary             string   `json:"primary" toml:"primary" bson:"primary"`
	Secondary           string   `json:"secondary,omitempty" toml:"secondary,omitempty" bson:"secondary,omitempty"`
	Background          string   `json:"background,omitempty" toml:"background,omitempty" bson:"background,omitempty"`
	BackgroundColor     string   `json:"background_color,omitempty" toml:"background-color,omitempty" bson:"background_color,omitempty"`
	TextBackgroundColor string   `json:"text_background_color,omitempty" toml:"text-background-color,omitempty" bson:"text_background_color,omitempty"`
	TextColor           string   `json:"text_color,omitempty" toml:"text-color,omitempty" bson:"text_color,omitempty"`
	Fit                 string   `json:"fit,omitempty" toml:"fit,omitempty" bson:"fit,omitempty"`
	Anchor              string   `json:"anchor,omitempty" toml:"anchor,omitempty" bson:"anchor,omitempty"`
	Extra               []string `json:"extra,omitempty" toml:"extra,omitempty" bson:"extra,omitempty"`
}

// ReadOptions control how records become badges.
type ReadOptions struct {
	// Dir resolves relative background paths. Import functions set it to the
	// directory of the input file.
	Dir string

	// Size is applied to every badge. The zero value means DefaultSize.
	Size Size

	// Images decodes backgrounds. Nil creates a private cache per call.
	Images *raster.ImageCache

	// Logger reports resource and color errors. Nil uses log.Default().
	Logger *log.Logger
}

func (o ReadOptions) withDefaults() ReadOptions {
	if o.Size == (Size{}) {
		o.Size = DefaultSize()
	}
	if o.Images == nil {
		o.Images = raster.NewImageCache(nil)
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// Badge converts rec. Empty colors keep the badge defaults; malformed colors
// and unknown fit or anchor names are logged and replaced (black, fit_width,
// middle). A background that cannot be decoded is logged and left nil;
// BackgroundPath still records where it was expected.
func (rec Record) Badge(ctx context.Context, opts ReadOptions) *badge.Badge {
	opts = opts.withDefaults()
	logger := opts.Logger.With("badge", rec.Number)

	b := badge.New(rec.Number, rec.Primary, rec.Secondary)
	opts.Size.Apply(b)

	if rec.BackgroundColor != "" {
		b.BackgroundColor = parseColor(logger, "background_color", rec.BackgroundColor)
	}
	if rec.TextBackgroundColor != "" {
		b.TextBackgroundColor = parseColor(logger, "text_background_color", rec.TextBackgroundColor)
	}
	if rec.TextColor != "" {
		b.TextColor = parseColor(logger, "text_color", rec.TextColor)
	}

	if rec.Fit != "" {
		fit, err := badge.ParseFit(rec.Fit)
		if err != nil {
			logger.Warn("invalid fit, using fit_width", "err", err)
		}
		b.Fit = fit
	}
	if rec.Anchor != "" {
		anchor, err := badge.ParseAnchor(rec.Anchor)
		if err != nil {
			logger.Warn("invalid anchor, using middle", "err", err)
		}
		b.Anchor = anchor
	}
	b.Extra = append([]string(nil), rec.Extra...)

	if path := strings.TrimSpace(rec.Background); path != "" {
		if !filepath.IsAbs(path) && opts.Dir != "" {
			path = filepath.Join(opts.Dir, path)
		}
		b.BackgroundPath = path
		img, err := opts.Images.Get(ctx, path)
		if err != nil {
			logger.Warn("background unavailable", "path", path, "err", err)
		} else {
			b.Background = img
		}
	}
	return b
}

func parseColor(logger *log.Logger, field, s string) color.NRGBA {
	c, err := raster.ParseColor(s)
	if err != nil {
		logger.Warn("invalid color, using black", "field", field, "err", err)
	}
	return c
}

// FromBadge converts b. background is the value written to the background
// column; exporters decide where the image itself goes.
func FromBadge(b *badge.Badge, background string) Record {
	return Record{
		Number:              b.Number,
		Primary:             b.Primary,
		Secondary:           b.Secondary,
		Background:          background,
		BackgroundColor:     raster.FormatColor(b.BackgroundColor),
		TextBackgroundColor: raster.FormatColor(b.TextBackgroundColor),
		TextColor:           raster.FormatColor(b.TextColor),
		Fit:                 b.Fit.String(),
		Anchor:              b.Anchor.String(),
		Extra:               append([]string(nil), b.Extra...),
	}
}

// Badges converts every record.
func Badges(ctx context.Context, recs []Record, opts ReadOptions) []*badge.Badge {
	opts = opts.withDefaults()
	out := make([]*badge.Badge, len(recs))
	for i, rec := range recs {
		out[i] = rec.Badge(ctx, opts)
	}
	return out
}
