// Package classic implements the banner badge: a background image between
// two slanted text bands, the number and institution on top and the team
// name on the bottom.
package classic

import (
	"context"
	"image"

	"github.com/fogleman/gg"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/fonts"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
)

// Name is the registry key.
const Name = "classic"

// Property keys.
const (
	PropFontBold         = "font-bold"
	PropPrimaryHeight    = "primary-height"
	PropSecondaryHeight  = "secondary-height"
	PropTextHeightFactor = "text-height-factor"
)

// Layout constants, as fractions of the badge width.
const (
	bandSlant        = 0.85 // x where a band's slanted edge meets its inner side
	numberX          = 0.02
	secondaryGap     = 0.06 // between the number and the secondary text
	secondaryReserve = 0.25 // kept free at the right of the top band
	primaryLimit     = 0.92
)

// Renderer draws classic badges.
type Renderer struct {
	render.Base
}

// New creates a classic renderer with default properties.
func New(env render.Env) render.Renderer {
	return &Renderer{
		Base: render.NewBase(Name, "Classic Mercury badge", env,
			render.FontProperty(fonts.DefaultName),
			render.Property{Key: PropFontBold, Kind: render.String, Default: "no", Description: "Use the bold face (yes/no)"},
			render.Property{Key: PropPrimaryHeight, Kind: render.Float, Default: "0.15", Description: "Bottom band height as a fraction of the badge height"},
			render.Property{Key: PropSecondaryHeight, Kind: render.Float, Default: "0.15", Description: "Top band height as a fraction of the badge height"},
			render.Property{Key: PropTextHeightFactor, Kind: render.Float, Default: "1.0", Description: "Text height relative to its band"},
			render.FontSizeProperty(),
		),
	}
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, b *badge.Badge) image.Image {
	w, h := b.PixelSize()
	W, H := float64(w), float64(h)
	pH := r.Props.Float(PropPrimaryHeight)
	sH := r.Props.Float(PropSecondaryHeight)
	factor := r.Props.Float(PropTextHeightFactor)

	dc := raster.NewCanvas(w, h, b.BackgroundColor)
	r.drawBackground(ctx, dc, b, pH, sH)

	raster.FillPolygon(dc, TopBand(W, H, sH), b.TextBackgroundColor)
	raster.FillPolygon(dc, BottomBand(W, H, pH), b.TextBackgroundColor)

	style := fonts.Regular
	if r.Props.Bool(PropFontBold) {
		style = fonts.Bold
	}
	f := r.Font(style)

	// Top band: number, then secondary text.
	topH := int(sH * H)
	topTextH := int(sH * H * factor)
	numberW := 0
	if b.HasNumber() {
		num := r.Text(f, b.NumberText(), b.TextColor, topTextH, 0)
		nw, nh := raster.Size(num)
		raster.Blit(dc, num, int(numberX*W), max((topH-nh)/2, 0))
		numberW = nw
	}
	limit := max(int(W-float64(numberW)-secondaryReserve*W), 1)
	sec := r.Text(f, b.Secondary, b.TextColor, topTextH, limit)
	_, sh := raster.Size(sec)
	raster.Blit(dc, sec, numberW+int(secondaryGap*W), max((topH-sh)/2, 0))

	// Bottom band: primary text, centered.
	bottomH := int(pH * H)
	prim := r.Text(f, b.Primary, b.TextColor, int(pH*H*factor), int(primaryLimit*W))
	pw, ph := raster.Size(prim)
	raster.Blit(dc, prim, (w-pw)/2, h-ph-(bottomH-ph)/2)

	return dc.Image()
}

// ResourceHash implements render.ResourceHasher.
func (r *Renderer) ResourceHash(ctx context.Context, b *badge.Badge) string {
	return r.Env.BackgroundDigest(ctx, b)
}

func (r *Renderer) drawBackground(ctx context.Context, dc *gg.Context, b *badge.Badge, pH, sH float64) {
	bg := b.Background
	if bg == nil {
		bg = r.Env.Image(ctx, b.BackgroundPath)
	}
	if bg == nil {
		return
	}
	w, h := b.PixelSize()
	bw, bh := BackgroundSize(bg, w, h, b.Fit, pH, sH)
	scaled := raster.Scale(bg, bw, bh, r.Env.Quality)
	raster.Blit(dc, scaled, (w-bw)/2, b.Anchor.OffsetY(h, bh))
}

// BackgroundSize returns the scaled size of bg on a w x h badge.
func BackgroundSize(bg image.Image, w, h int, fit badge.Fit, pH, sH float64) (int, int) {
	iw, ih := raster.Size(bg)
	switch fit {
	case badge.FitHeight:
		bh := max(int((1-pH-sH)*float64(h)), 1)
		return raster.AspectWidth(iw, ih, bh), bh
	case badge.Fill:
		return w, h
	default:
		return w, raster.AspectHeight(iw, ih, w)
	}
}

// TopBand is the secondary-text band: full width along the top edge, its
// lower edge ending at 85% of the width.
func TopBand(W, H, sH float64) []raster.Point {
	return []raster.Point{
		{X: 0, Y: 0},
		{X: W, Y: 0},
		{X: bandSlant * W, Y: sH * H},
		{X: 0, Y: sH * H},
	}
}

// BottomBand is the primary-text band: full width along the bottom edge,
// its upper edge ending at 85% of the width.
func BottomBand(W, H, pH float64) []raster.Point {
	return []raster.Point{
		{X: 0, Y: H - pH*H},
		{X: bandSlant * W, Y: H - pH*H},
		{X: W, Y: H},
		{X: 0, Y: H},
	}
}
