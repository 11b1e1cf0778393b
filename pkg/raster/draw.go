package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Point is a pixel coordinate.
type Point struct {
	X, Y float64
}

// NewCanvas returns a w x h drawing context filled with bg.
func NewCanvas(w, h int, bg color.Color) *gg.Context {
	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.SetColor(bg)
	dc.Clear()
	return dc
}

// Polygon traces a closed path through pts. It draws nothing for fewer than
// one point.
func Polygon(dc *gg.Context, pts []Point) {
	if len(pts) == 0 {
		return
	}
	dc.NewSubPath()
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}

// FillPolygon fills the polygon through pts with c.
func FillPolygon(dc *gg.Context, pts []Point, c color.Color) {
	Polygon(dc, pts)
	dc.SetColor(c)
	dc.Fill()
}

// StrokePolygon outlines the polygon through pts with a one pixel line.
func StrokePolygon(dc *gg.Context, pts []Point, c color.Color) {
	Polygon(dc, pts)
	dc.SetColor(c)
	dc.SetLineWidth(1)
	dc.Stroke()
}

// Blit draws img with its top-left corner at (x, y). A nil image is ignored.
func Blit(dc *gg.Context, img image.Image, x, y int) {
	if img == nil {
		return
	}
	dc.DrawImage(img, x, y)
}

// Size returns the dimensions of img, or 0x0 for nil.
func Size(img image.Image) (w, h int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}
