package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestScaleDimensions(t *testing.T) {
	src := solid(40, 20, color.White)

	tests := []struct {
		name         string
		w, h         int
		q            Quality
		wantW, wantH int
	}{
		{"high down", 20, 10, High, 20, 10},
		{"fast up", 80, 40, Fast, 80, 40},
		{"aspect not preserved", 10, 30, High, 10, 30},
		{"zero clamps", 0, 0, High, 1, 1},
		{"negative clamps", -5, 7, Fast, 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scale(src, tt.w, tt.h, tt.q)
			w, h := Size(got)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Scale() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitText(t *testing.T) {
	tests := []struct {
		name            string
		bufW, bufH      int
		targetH, limitW int
		wantW, wantH    int
	}{
		{"height bound", 1000, 200, 50, 1000, 250, 50},
		{"width bound", 1000, 200, 50, 100, 100, 20},
		{"unbounded", 1000, 200, 50, 0, 250, 50},
		{"exact fit", 1000, 200, 50, 250, 250, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitText(tt.bufW, tt.bufH, tt.targetH, tt.limitW)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitText() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitTextBounds(t *testing.T) {
	for bufW := 10; bufW <= 2000; bufW += 97 {
		for bufH := 10; bufH <= 400; bufH += 53 {
			for targetH := 1; targetH <= 300; targetH += 37 {
				for _, limitW := range []int{1, 17, 250, 999, 5000} {
					w, h := FitText(bufW, bufH, targetH, limitW)
					if h > targetH {
						t.Fatalf("FitText(%d,%d,%d,%d) height %d > target", bufW, bufH, targetH, limitW, h)
					}
					if w > limitW {
						t.Fatalf("FitText(%d,%d,%d,%d) width %d > limit", bufW, bufH, targetH, limitW, w)
					}
				}
			}
		}
	}
}

func TestRasterizeText(t *testing.T) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse font: %v", err)
	}

	buf := TextBuffer(f, ReferenceSize, "Team A", color.Black)
	if buf == nil {
		t.Fatal("TextBuffer returned nil")
	}
	bw, bh := Size(buf)

	tests := []struct {
		name            string
		targetH, limitW int
	}{
		{"height bound", 40, 10000},
		{"width bound", 400, 100},
		{"tiny", 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := RasterizeText(f, ReferenceSize, "Team A", color.Black, tt.targetH, tt.limitW, High)
			if img == nil {
				t.Fatal("RasterizeText returned nil")
			}
			w, h := Size(img)
			if h > tt.targetH || w > tt.limitW {
				t.Errorf("RasterizeText() = %dx%d, exceeds %dx%d", w, h, tt.limitW, tt.targetH)
			}
			if h >= 10 {
				want := float64(bw) / float64(bh)
				got := float64(w) / float64(h)
				if d := got/want - 1; d > 0.1 || d < -0.1 {
					t.Errorf("aspect = %.3f, want %.3f", got, want)
				}
			}
		})
	}

	if RasterizeText(f, ReferenceSize, "", color.Black, 40, 100, High) != nil {
		t.Error("empty string should rasterize to nil")
	}
	if RasterizeText(nil, ReferenceSize, "x", color.Black, 40, 100, High) != nil {
		t.Error("nil font should rasterize to nil")
	}
}

func TestSetAlpha(t *testing.T) {
	img := solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 200})

	if err := SetAlpha(img, 50); err != nil {
		t.Fatalf("SetAlpha error: %v", err)
	}
	if got := img.NRGBAAt(1, 1).A; got != 100 {
		t.Errorf("alpha = %d, want 100", got)
	}
	if c := img.NRGBAAt(1, 1); c.R != 10 || c.G != 20 || c.B != 30 {
		t.Errorf("color channels changed: %v", c)
	}

	if err := SetAlpha(img, 1000); err != nil {
		t.Fatalf("SetAlpha error: %v", err)
	}
	if got := img.NRGBAAt(0, 0).A; got != 255 {
		t.Errorf("alpha = %d, want clamped 255", got)
	}

	if err := SetAlpha(img, -20); err != nil {
		t.Fatalf("SetAlpha error: %v", err)
	}
	if got := img.NRGBAAt(0, 0).A; got != 0 {
		t.Errorf("alpha = %d, want 0", got)
	}
}

func TestSetAlphaRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})

	if err := SetAlpha(img, 50); err != nil {
		t.Fatalf("SetAlpha error: %v", err)
	}
	c := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	if c.A < 126 || c.A > 129 {
		t.Errorf("alpha = %d, want about 128", c.A)
	}
}

func TestSetAlphaWithoutAlphaChannel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	if err := SetAlpha(img, 50); !errors.Is(err, ErrNoAlpha) {
		t.Errorf("SetAlpha(gray) error = %v, want ErrNoAlpha", err)
	}
}

func TestImageCache(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	c := NewImageCache(func(path string) (image.Image, error) {
		calls.Add(1)
		if path == "missing.png" {
			return nil, errors.New("no such file")
		}
		return solid(2, 2, color.White), nil
	})

	a, err := c.Get(ctx, "logo.png")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	b, err := c.Get(ctx, "./logo.png")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if a != b {
		t.Error("equivalent paths should share one entry")
	}
	if calls.Load() != 1 {
		t.Errorf("decoder calls = %d, want 1", calls.Load())
	}

	if _, err := c.Get(ctx, "missing.png"); err == nil {
		t.Error("Get(missing) should fail")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (failures are not cached)", c.Len())
	}

	c.Invalidate("logo.png")
	if c.Len() != 0 {
		t.Errorf("Len() after Invalidate = %d, want 0", c.Len())
	}
	if _, err := c.Get(ctx, "logo.png"); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("decoder calls = %d, want 3", calls.Load())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestImageCacheConcurrentFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	c := NewImageCache(func(path string) (image.Image, error) {
		return solid(1, 1, color.White), nil
	})

	const n = 16
	results := make([]image.Image, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := c.Get(ctx, "shared.png")
			if err != nil {
				t.Errorf("Get error: %v", err)
				return
			}
			results[i] = img
		}(i)
	}
	wg.Wait()

	stored, _ := c.Get(ctx, "shared.png")
	for i, img := range results {
		if img != stored {
			t.Errorf("goroutine %d got a different image than the stored entry", i)
		}
	}
}

func TestDigest(t *testing.T) {
	a := solid(3, 3, color.White)
	b := solid(3, 3, color.White)
	c := solid(3, 3, color.Black)

	if Digest(a) != Digest(b) {
		t.Error("equal images should have equal digests")
	}
	if Digest(a) == Digest(c) {
		t.Error("different images should have different digests")
	}
	if Digest(solid(9, 1, color.White)) == Digest(a) {
		t.Error("digest should include dimensions")
	}
	if Digest(nil) != "" {
		t.Error("Digest(nil) should be empty")
	}
}

func TestImageCacheDigest(t *testing.T) {
	ctx := context.Background()
	shade := color.Gray{Y: 10}
	c := NewImageCache(func(path string) (image.Image, error) {
		if path == "missing.png" {
			return nil, errors.New("no such file")
		}
		return solid(2, 2, shade), nil
	})

	d, err := c.Digest(ctx, "logo.png")
	if err != nil {
		t.Fatalf("Digest error: %v", err)
	}
	img, _ := c.Get(ctx, "logo.png")
	if d != Digest(img) {
		t.Error("Digest should describe the image Get returns")
	}

	// A new cache sees new file contents.
	shade = color.Gray{Y: 200}
	c2 := NewImageCache(func(string) (image.Image, error) { return solid(2, 2, shade), nil })
	if d2, _ := c2.Digest(ctx, "logo.png"); d2 == d {
		t.Error("different pixels should digest differently")
	}

	if _, err := c.Digest(ctx, "missing.png"); err == nil {
		t.Error("Digest(missing) should fail")
	}
}
