package raster

import (
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Quality selects the resampling filter.
type Quality int

const (
	// High is used for final output (Lanczos).
	High Quality = iota
	// Fast is used for interactive previews (approximate bilinear).
	Fast
)

// String returns "high" or "fast".
func (q Quality) String() string {
	if q == Fast {
		return "fast"
	}
	return "high"
}

// ParseQuality maps "fast" to Fast and everything else to High.
func ParseQuality(s string) Quality {
	if s == "fast" {
		return Fast
	}
	return High
}

// Scale resamples src to exactly w x h. Aspect ratio is not preserved; callers
// compute w and h themselves. Both are clamped to at least 1.
func Scale(src image.Image, w, h int, q Quality) *image.NRGBA {
	w, h = max(w, 1), max(h, 1)
	if q == Fast {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		return dst
	}
	return imaging.Resize(src, w, h, imaging.Lanczos)
}

// ScaleToHeight scales src to height h, deriving the width from the source
// aspect ratio.
func ScaleToHeight(src image.Image, h int, q Quality) *image.NRGBA {
	b := src.Bounds()
	return Scale(src, AspectWidth(b.Dx(), b.Dy(), h), h, q)
}

// ScaleToWidth scales src to width w, deriving the height from the source
// aspect ratio.
func ScaleToWidth(src image.Image, w int, q Quality) *image.NRGBA {
	b := src.Bounds()
	return Scale(src, w, AspectHeight(b.Dx(), b.Dy(), w), q)
}

// AspectWidth returns the width that keeps srcW:srcH at height h.
func AspectWidth(srcW, srcH, h int) int {
	if srcH <= 0 {
		return 1
	}
	return max(int(float64(h)/float64(srcH)*float64(srcW)), 1)
}

// AspectHeight returns the height that keeps srcW:srcH at width w.
func AspectHeight(srcW, srcH, w int) int {
	if srcW <= 0 {
		return 1
	}
	return max(int(float64(w)/float64(srcW)*float64(srcH)), 1)
}

// FitText applies the shrink-to-fit rule to a buffer of bufW x bufH: scale to
// targetH first, and if the resulting width exceeds limitW, bind on width and
// let the height shrink. limitW <= 0 means unbounded. The result keeps the
// buffer's aspect ratio within truncation and is never smaller than 1x1.
func FitText(bufW, bufH, targetH, limitW int) (w, h int) {
	h = max(targetH, 1)
	w = AspectWidth(bufW, bufH, h)
	if limitW > 0 && w > limitW {
		w = limitW
		h = AspectHeight(bufW, bufH, w)
	}
	return w, h
}
