package raster

import (
	"encoding/binary"
	"image"

	"github.com/disintegration/imaging"

	"github.com/osumercury/badgemaker/pkg/cache"
)

// Digest returns a content hash of img's dimensions and pixels. It returns ""
// for a nil image.
func Digest(img image.Image) string {
	if img == nil {
		return ""
	}
	var nrgba *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		nrgba = n
	} else {
		nrgba = imaging.Clone(img)
	}
	b := nrgba.Bounds()
	buf := make([]byte, 8, 8+len(nrgba.Pix))
	binary.BigEndian.PutUint32(buf[0:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(buf[4:8], uint32(b.Dy()))
	buf = append(buf, nrgba.Pix...)
	return cache.Hash(buf)
}
