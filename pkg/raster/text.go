package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// ReferenceSize is the font size, in pixels, at which text is rasterized
// before being scaled to its final height.
const ReferenceSize = 200

// TextBuffer renders s at refSize into a buffer sized exactly to the string's
// advance width and the face's ascent plus descent, with the baseline at
// height minus descent. It returns nil when s is empty or has no advance.
func TextBuffer(f *truetype.Font, refSize float64, s string, c color.Color) image.Image {
	if f == nil || s == "" {
		return nil
	}
	if refSize <= 0 {
		refSize = ReferenceSize
	}
	face := truetype.NewFace(f, &truetype.Options{Size: refSize, Hinting: font.HintingNone})
	defer face.Close()

	m := face.Metrics()
	bw := font.MeasureString(face, s).Ceil()
	bh := (m.Ascent + m.Descent).Ceil()
	if bw <= 0 || bh <= 0 {
		return nil
	}

	dc := gg.NewContext(bw, bh)
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(s, 0, float64(bh-m.Descent.Ceil()))
	return dc.Image()
}

// RasterizeText renders s at refSize and scales the result to targetH,
// falling back to limitW as the binding constraint when the height-driven
// width would exceed it (see FitText). Rendering big and scaling down keeps
// typography proportions identical at every output resolution. It returns
// nil when there is nothing to draw.
func RasterizeText(f *truetype.Font, refSize float64, s string, c color.Color, targetH, limitW int, q Quality) image.Image {
	buf := TextBuffer(f, refSize, s, c)
	if buf == nil {
		return nil
	}
	b := buf.Bounds()
	w, h := FitText(b.Dx(), b.Dy(), targetH, limitW)
	return Scale(buf, w, h, q)
}
