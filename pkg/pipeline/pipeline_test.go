package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/layout"
	"github.com/osumercury/badgemaker/pkg/render"
)

var quiet = log.New(io.Discard)

// =============================================================================
// Fakes
// =============================================================================

type solidRenderer struct {
	render.Base
	calls atomic.Int32
}

func newSolid(env render.Env) render.Renderer {
	return &solidRenderer{Base: render.NewBase("solid", "solid fill", env,
		render.Property{Key: "shade", Kind: render.Integer, Default: "128", Description: "gray level"})}
}

func (s *solidRenderer) Render(ctx context.Context, b *badge.Badge) image.Image {
	s.calls.Add(1)
	w, h := b.PixelSize()
	v := uint8(s.Props.Int("shade"))
	return imaging.New(w, h, color.NRGBA{R: v, G: v, B: v, A: 0xff})
}

type memSink struct {
	names  []string
	failAt int // 1-based; 0 never fails
}

func (m *memSink) WriteImage(name string, img image.Image) (string, error) {
	if m.failAt > 0 && len(m.names)+1 == m.failAt {
		return "", fmt.Errorf("disk full")
	}
	m.names = append(m.names, name)
	return "/mem/" + name + ".png", nil
}

type placed struct {
	page       int
	x, y, w, h float64
}

type memDoc struct {
	pages  int
	places []placed
	closed bool
}

func (d *memDoc) AddPage(w, h float64) error { d.pages++; return nil }

func (d *memDoc) Place(img image.Image, x, y, w, h float64) error {
	d.places = append(d.places, placed{page: d.pages - 1, x: x, y: y, w: w, h: h})
	return nil
}

func (d *memDoc) Pages() int   { return d.pages }
func (d *memDoc) Close() error { d.closed = true; return nil }

func testRunner() *Runner {
	return NewRunner(nil, nil, quiet)
}

func roster(n int) []*badge.Badge {
	out := make([]*badge.Badge, n)
	for i := range out {
		b := badge.New(i+1, fmt.Sprintf("Team %c", 'A'+i), "OSU")
		b.SetSize(2.5, 1.25, 8)
		out[i] = b
	}
	return out
}

func testRegistry() *render.Registry {
	reg := render.NewRegistry()
	reg.Register("solid", newSolid)
	return reg
}

// =============================================================================
// Options
// =============================================================================

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"jpg", false},
		{"pdf", false},
		{"svg", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestSetExportDefaults(t *testing.T) {
	o := Options{OutputDir: "out", PDFPath: "b.pdf"}
	o.SetExportDefaults()

	if o.Renderer != DefaultRenderer {
		t.Errorf("Renderer = %q", o.Renderer)
	}
	if len(o.Formats) != 2 || !o.WantsFormat(FormatPNG) || !o.WantsFormat(FormatPDF) {
		t.Errorf("Formats = %v, want png and pdf", o.Formats)
	}
	if o.Margin != DefaultMargin || o.Spacing != DefaultSpacing {
		t.Errorf("margin/spacing = %v/%v", o.Margin, o.Spacing)
	}
	if o.Page != DefaultPage || o.Units != DefaultUnits || o.JPEGQuality != DefaultJPEGQuality {
		t.Errorf("page defaults not applied: %+v", o)
	}
	if o.Logger == nil {
		t.Error("Logger not defaulted")
	}

	kept := Options{Margin: 0.5}
	kept.SetExportDefaults()
	if kept.Margin != 0.5 || kept.Spacing != 0 {
		t.Errorf("explicit margin overridden: %v/%v", kept.Margin, kept.Spacing)
	}

	zero := Options{MarginSet: true, SpacingSet: true}
	zero.SetExportDefaults()
	if zero.Margin != 0 || zero.Spacing != 0 {
		t.Errorf("explicit zero margin/spacing overridden: %v/%v", zero.Margin, zero.Spacing)
	}
}

func TestValidateForExport(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"png dir", Options{OutputDir: "out"}, ""},
		{"pdf", Options{PDFPath: "b.pdf", Page: "a4", Orientation: "landscape", Units: "mm"}, ""},
		{"centimeters", Options{PDFPath: "b.pdf", Units: "cm"}, ""},
		{"points", Options{PDFPath: "b.pdf", Units: "pt"}, ""},
		{"nothing", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"gif"}, OutputDir: "out"}, errors.ErrCodeInvalidFormat},
		{"jpg without dir", Options{Formats: []string{"jpg"}}, errors.ErrCodeInvalidInput},
		{"png and jpg", Options{Formats: []string{"png", "jpg"}, OutputDir: "out"}, errors.ErrCodeInvalidInput},
		{"pdf without path", Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidInput},
		{"bad page", Options{PDFPath: "b.pdf", Page: "B5"}, errors.ErrCodeInvalidPage},
		{"bad units", Options{PDFPath: "b.pdf", Units: "furlongs"}, errors.ErrCodeInvalidPage},
		{"negative margin", Options{PDFPath: "b.pdf", Margin: -1}, errors.ErrCodeInvalidPage},
		{"bad quality", Options{OutputDir: "out", JPEGQuality: 101}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForExport()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPageSpecConvertsUnits(t *testing.T) {
	o := Options{Page: "LETTER", Orientation: "landscape", Units: "in", Margin: 0.5, Spacing: 0.25}
	spec, units, err := o.PageSpec()
	if err != nil {
		t.Fatal(err)
	}
	if units != layout.Inches {
		t.Errorf("units = %v", units)
	}
	if spec.Size.W != 792 || spec.Size.H != 612 {
		t.Errorf("size = %+v, want landscape letter", spec.Size)
	}
	if spec.Margin != 36 || spec.Spacing != 18 {
		t.Errorf("margin/spacing = %v/%v, want 36/18", spec.Margin, spec.Spacing)
	}
}

// =============================================================================
// Progress and jobs
// =============================================================================

func TestProgress(t *testing.T) {
	p := NewProgress()
	if p.ID == "" {
		t.Fatal("empty ID")
	}

	var got []Snapshot
	p.Subscribe(func(s Snapshot) { got = append(got, s) })
	p.Update("one", 50)
	p.Update("two", 150)
	p.Finish()

	if len(got) != 3 {
		t.Fatalf("notifications = %d, want 3", len(got))
	}
	if got[1].Percent != 100 {
		t.Errorf("percent not clamped: %v", got[1].Percent)
	}
	if !got[2].Done || got[2].Text != "two" {
		t.Errorf("final snapshot = %+v", got[2])
	}
	if p.Cancelled() {
		t.Error("cancelled without Cancel")
	}
	p.Cancel()
	if !p.Snapshot().Cancelled {
		t.Error("Cancel not visible in snapshot")
	}
}

func TestJobCancel(t *testing.T) {
	r := testRunner()
	started := make(chan struct{})
	job := r.Start(context.Background(), func(ctx context.Context, p *Progress) (*Result, error) {
		close(started)
		<-ctx.Done()
		return &Result{Cancelled: p.Cancelled()}, nil
	})
	<-started
	job.Cancel()

	res, err := job.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !res.Cancelled {
		t.Error("result not marked cancelled")
	}
	if !job.Progress.Done() {
		t.Error("progress not finished")
	}
	if job.ID != job.Progress.ID {
		t.Error("job and progress IDs differ")
	}
}

// =============================================================================
// Batches
// =============================================================================

func TestPrepare(t *testing.T) {
	r := testRunner()
	reg := testRegistry()

	if _, err := r.Prepare(reg, Options{Renderer: "nope"}); !errors.Is(err, errors.ErrCodeUnknownRenderer) {
		t.Errorf("unknown renderer err = %v", err)
	}

	rend, err := r.Prepare(reg, Options{Renderer: "solid", Properties: map[string]string{"shade": "oops", "missing": "1"}})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, ok := rend.(*render.Cached); !ok {
		t.Errorf("Prepare returned %T, want *render.Cached", rend)
	}
	if v, _ := rend.GetProperty("shade"); v.Int() != 128 {
		t.Errorf("shade = %d, want default kept", v.Int())
	}

	plain, err := r.Prepare(reg, Options{Renderer: "solid", NoCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := plain.(*render.Cached); ok {
		t.Error("NoCache still wrapped the renderer")
	}
}

func TestRenderAllUsesCache(t *testing.T) {
	r := testRunner()
	rend, err := r.Prepare(testRegistry(), Options{Renderer: "solid"})
	if err != nil {
		t.Fatal(err)
	}
	badges := roster(3)

	first, err := r.RenderAll(context.Background(), rend, badges, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Rendered != 3 || len(first.Images) != 3 || first.CacheHits != 0 {
		t.Fatalf("first run = %+v", first)
	}
	if w, h := first.Images[0].Bounds().Dx(), first.Images[0].Bounds().Dy(); w != 20 || h != 25 {
		t.Errorf("raster = %dx%d, want 20x25", w, h)
	}

	second, err := r.RenderAll(context.Background(), rend, badges, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 3 {
		t.Errorf("second run hits = %d, want 3", second.CacheHits)
	}

	badges[0].SetSize(2.5, 1.25, 8)
	third, _ := r.RenderAll(context.Background(), rend, badges, nil)
	if third.CacheHits != 2 {
		t.Errorf("after resize hits = %d, want 2", third.CacheHits)
	}
}

func TestExportImages(t *testing.T) {
	r := testRunner()
	rend := newSolid(r.Env(0))
	s := &memSink{}
	p := NewProgress()

	res, err := r.ExportImages(context.Background(), rend, roster(3), s, p)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1-Team A", "2-Team B", "3-Team C"}
	for i, name := range want {
		if s.names[i] != name {
			t.Errorf("name[%d] = %q, want %q", i, s.names[i], name)
		}
	}
	if len(res.Paths) != 3 || res.Total != 3 {
		t.Errorf("result = %+v", res)
	}
	if snap := p.Snapshot(); snap.Percent != 100 {
		t.Errorf("percent = %v, want 100", snap.Percent)
	}
}

func TestExportImagesSinkFailure(t *testing.T) {
	r := testRunner()
	s := &memSink{failAt: 2}

	res, err := r.ExportImages(context.Background(), newSolid(r.Env(0)), roster(4), s, nil)
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Fatalf("err = %v, want IO_ERROR", err)
	}
	if res.Rendered != 1 || len(s.names) != 1 {
		t.Errorf("rendered = %d, written = %d, want 1 and 1", res.Rendered, len(s.names))
	}
}

func TestExportCancelledMidBatch(t *testing.T) {
	r := testRunner()
	p := NewProgress()
	p.Subscribe(func(s Snapshot) {
		if s.Percent >= 40 {
			p.Cancel()
		}
	})
	s := &memSink{}

	res, err := r.ExportImages(context.Background(), newSolid(r.Env(0)), roster(5), s, p)
	if err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if !res.Cancelled || res.Rendered != 2 || len(s.names) != 2 {
		t.Errorf("result = %+v, written = %d", res, len(s.names))
	}
}

func TestExportCancelledContext(t *testing.T) {
	r := testRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.RenderAll(ctx, newSolid(r.Env(0)), roster(2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cancelled || res.Rendered != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestExportDocument(t *testing.T) {
	r := testRunner()
	badges := roster(10)
	o := Options{PDFPath: "b.pdf"}
	o.SetExportDefaults()
	spec, units, err := o.PageSpec()
	if err != nil {
		t.Fatal(err)
	}

	doc := &memDoc{}
	res, err := r.ExportDocument(context.Background(), newSolid(r.Env(0)), badges, doc, spec, units, nil)
	if err != nil {
		t.Fatal(err)
	}

	sizes := make([]layout.Size, len(badges))
	for i := range sizes {
		sizes[i] = layout.Size{W: 180, H: 225}
	}
	want := layout.Pack(sizes, spec)

	if !doc.closed {
		t.Error("document not closed")
	}
	if res.Pages != want.Pages || doc.pages != want.Pages {
		t.Errorf("pages = %d (doc %d), want %d", res.Pages, doc.pages, want.Pages)
	}
	if len(doc.places) != len(want.Placements) {
		t.Fatalf("placements = %d, want %d", len(doc.places), len(want.Placements))
	}
	for i, pl := range want.Placements {
		got := doc.places[i]
		if got.page != pl.Page || got.x != pl.X || got.y != pl.Y || got.w != pl.W || got.h != pl.H {
			t.Errorf("placement %d = %+v, want %+v", i, got, pl)
		}
	}
}
