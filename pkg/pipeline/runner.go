package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/cache"
	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/fonts"
	"github.com/osumercury/badgemaker/pkg/layout"
	"github.com/osumercury/badgemaker/pkg/observability"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
	"github.com/osumercury/badgemaker/pkg/sink"
)

// TTLRaster is how long persisted rasters stay in the byte cache.
const TTLRaster = 7 * 24 * time.Hour

// Result summarizes a batch.
type Result struct {
	Total     int           // badges in the batch
	Rendered  int           // badges completed before the batch ended
	CacheHits int           // renders served from the raster cache
	Images    []image.Image // RenderAll only, in input order
	Paths     []string      // ExportImages only
	Pages     int           // ExportDocument only
	Cancelled bool
	Duration  time.Duration
}

// Runner executes batches with shared caches.
//
// Runner holds no per-batch state. Several batches may run on the same
// Runner at once; they share the decoded-image cache and the font library.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Images *raster.ImageCache
	Fonts  *fonts.Library
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Images: raster.NewImageCache(nil),
		Fonts:  fonts.NewLibrary(fonts.WithLogger(logger)),
	}
}

// Env returns the renderer environment backed by the runner's shared caches.
func (r *Runner) Env(quality raster.Quality) render.Env {
	return render.Env{
		Images:  r.Images,
		Fonts:   r.Fonts,
		Logger:  r.Logger,
		Quality: quality,
	}.WithDefaults()
}

// Prepare builds the renderer named in opts, applies its properties and
// wraps it in a raster cache unless opts.NoCache is set. Rejected properties
// are configuration errors: they are logged and the batch proceeds with the
// previous values.
func (r *Runner) Prepare(reg *render.Registry, opts Options) (render.Renderer, error) {
	name := opts.Renderer
	if name == "" {
		name = DefaultRenderer
	}
	rend, err := reg.New(name, r.Env(raster.ParseQuality(opts.Quality)))
	if err != nil {
		return nil, err
	}
	for _, err := range render.ApplyProperties(rend, opts.Properties) {
		r.Logger.Warn("property rejected", "renderer", name, "err", err)
	}
	if opts.NoCache {
		return rend, nil
	}
	return render.NewCached(rend,
		render.WithStore(r.Cache, r.Keyer),
		render.WithTTL(TTLRaster),
		render.WithCacheLogger(r.Logger),
	), nil
}

// =============================================================================
// Batches
// =============================================================================

// RenderAll renders every badge and keeps the rasters in memory.
func (r *Runner) RenderAll(ctx context.Context, rend render.Renderer, badges []*badge.Badge, p *Progress) (*Result, error) {
	res := &Result{Images: make([]image.Image, 0, len(badges))}
	err := r.batch(ctx, rend, badges, p, res, func(i int, b *badge.Badge, img image.Image) error {
		res.Images = append(res.Images, img)
		return nil
	})
	return res, err
}

// ExportImages renders every badge and writes it to s as
// "<number>-<primary>". Names are sanitized by the sink.
func (r *Runner) ExportImages(ctx context.Context, rend render.Renderer, badges []*badge.Badge, s sink.ImageSink, p *Progress) (*Result, error) {
	res := &Result{}
	err := r.batch(ctx, rend, badges, p, res, func(i int, b *badge.Badge, img image.Image) error {
		path, err := s.WriteImage(b.Name(), img)
		if err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write badge %s", b.Name())
		}
		r.Logger.Debug("wrote badge", "path", path)
		res.Paths = append(res.Paths, path)
		return nil
	})
	return res, err
}

// ExportDocument packs the badges onto pages of spec and places each raster
// on doc. Badge sizes are read in units and converted to points. The
// document is closed on success and on cancellation, so a cancelled batch
// still produces the pages completed so far.
func (r *Runner) ExportDocument(ctx context.Context, rend render.Renderer, badges []*badge.Badge, doc sink.DocumentSink, spec layout.PageSpec, units layout.Units, p *Progress) (*Result, error) {
	sizes := make([]layout.Size, len(badges))
	for i, b := range badges {
		sizes[i] = layout.Size{
			W: layout.ToPoints(b.Width(), units),
			H: layout.ToPoints(b.Height(), units),
		}
	}
	packed := layout.Pack(sizes, spec)
	r.Logger.Debug("packed badges", "badges", len(badges), "pages", packed.Pages)

	res := &Result{}
	page := -1
	err := r.batch(ctx, rend, badges, p, res, func(i int, b *badge.Badge, img image.Image) error {
		pl := packed.Placements[i]
		for page < pl.Page {
			if err := doc.AddPage(spec.Size.W, spec.Size.H); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "add page %d", page+2)
			}
			page++
		}
		if err := doc.Place(img, pl.X, pl.Y, pl.W, pl.H); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "place badge %s", b.Name())
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	if err := doc.Close(); err != nil {
		return res, errors.Wrap(errors.ErrCodeIO, err, "close document")
	}
	res.Pages = doc.Pages()
	return res, nil
}

// batch drives one pass over badges: poll for cancellation, render, hand the
// raster to emit, report progress.
func (r *Runner) batch(ctx context.Context, rend render.Renderer, badges []*badge.Badge, p *Progress, res *Result,
	emit func(i int, b *badge.Badge, img image.Image) error) (err error) {
	if p == nil {
		p = NewProgress()
	}
	hooks := observability.Pipeline()
	start := time.Now()
	res.Total = len(badges)
	hooks.OnBatchStart(ctx, p.ID, len(badges))
	defer func() {
		res.Duration = time.Since(start)
		hooks.OnBatchComplete(ctx, p.ID, res.Rendered, res.Duration, err)
		r.Logger.Info("batch finished",
			"renderer", rend.Name(),
			"rendered", res.Rendered,
			"total", res.Total,
			"cache_hits", res.CacheHits,
			"cancelled", res.Cancelled,
			"duration", res.Duration)
	}()

	for i, b := range badges {
		if p.Cancelled() || ctx.Err() != nil {
			res.Cancelled = true
			p.Cancel()
			return nil
		}

		t := time.Now()
		img, hit, err := renderOne(ctx, rend, b)
		if err != nil {
			res.Cancelled = true
			p.Cancel()
			return nil
		}
		hooks.OnBadgeRendered(ctx, rend.Name(), time.Since(t), hit)
		if hit {
			res.CacheHits++
		}
		if err := emit(i, b, img); err != nil {
			return err
		}

		res.Rendered++
		p.Update(fmt.Sprintf("%s (%d/%d)", b.Name(), i+1, len(badges)), 100*float64(i+1)/float64(len(badges)))
	}
	return nil
}

// renderOne only fails when ctx is done.
func renderOne(ctx context.Context, rend render.Renderer, b *badge.Badge) (image.Image, bool, error) {
	if c, ok := rend.(*render.Cached); ok {
		return c.RenderCached(ctx, b)
	}
	return rend.Render(ctx, b), false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
