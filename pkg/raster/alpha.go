package raster

import (
	"errors"
	"image"
	"image/color"
)

// ErrNoAlpha is returned by SetAlpha for images without an alpha channel.
var ErrNoAlpha = errors.New("image has no alpha channel")

// SetAlpha multiplies every pixel's alpha by percent/100 in place, clamping
// to the valid range. Only *image.NRGBA and *image.RGBA carry a true alpha
// channel; anything else is left untouched and ErrNoAlpha is returned.
func SetAlpha(img image.Image, percent float64) error {
	m := max(percent, 0) / 100
	switch im := img.(type) {
	case *image.NRGBA:
		b := im.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := im.Pix[im.PixOffset(b.Min.X, y):im.PixOffset(b.Max.X, y)]
			for i := 3; i < len(row); i += 4 {
				row[i] = scaleAlpha(row[i], m)
			}
		}
	case *image.RGBA:
		b := im.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(im.At(x, y)).(color.NRGBA)
				c.A = scaleAlpha(c.A, m)
				im.Set(x, y, c)
			}
		}
	default:
		return ErrNoAlpha
	}
	return nil
}

func scaleAlpha(a uint8, m float64) uint8 {
	v := float64(a) * m
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
