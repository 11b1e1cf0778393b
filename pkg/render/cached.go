package render

import (
	"bytes"
	"context"
	"image"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/cache"
	"github.com/osumercury/badgemaker/pkg/observability"
)

// Cached wraps a Renderer with a fingerprint → raster map. The map lives in
// memory; an optional byte cache persists rasters as PNG across runs.
//
// Cached is itself a Renderer. Property changes go to the wrapped renderer
// and change the fingerprint, so stale rasters are never served.
type Cached struct {
	Renderer

	store  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger

	mu      sync.Mutex
	mem     map[string]image.Image
	byBadge map[*badge.Badge]string
	digests *digestMemo
}

// CachedOption configures a Cached renderer.
type CachedOption func(*Cached)

// WithStore persists rasters in c using keys from keyer.
func WithStore(c cache.Cache, keyer cache.Keyer) CachedOption {
	return func(r *Cached) {
		r.store = c
		if keyer != nil {
			r.keyer = keyer
		}
	}
}

// WithTTL sets the expiry of persisted rasters. Zero keeps them forever.
func WithTTL(ttl time.Duration) CachedOption {
	return func(r *Cached) { r.ttl = ttl }
}

// WithCacheLogger sets the logger for store failures.
func WithCacheLogger(logger *log.Logger) CachedOption {
	return func(r *Cached) { r.logger = logger }
}

// NewCached wraps r.
func NewCached(r Renderer, opts ...CachedOption) *Cached {
	c := &Cached{
		Renderer: r,
		store:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		logger:   log.Default(),
		mem:      make(map[string]image.Image),
		byBadge:  make(map[*badge.Badge]string),
		digests:  newDigestMemo(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render implements Renderer.
func (c *Cached) Render(ctx context.Context, b *badge.Badge) image.Image {
	img, _, _ := c.RenderCached(ctx, b)
	return img
}

// RenderCached returns the raster for b and whether it came from a cache.
// Store failures are logged and fall through to rendering; the only error
// returned is the context's.
func (c *Cached) RenderCached(ctx context.Context, b *badge.Badge) (image.Image, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	fp := fingerprint(ctx, b, c.Renderer, c.digests.digest)

	c.mu.Lock()
	img, ok := c.mem[fp]
	c.byBadge[b] = fp
	c.mu.Unlock()
	if ok {
		observability.Cache().OnCacheHit(ctx, "raster")
		return img, true, nil
	}

	key := c.keyer.RasterKey(c.Renderer.Name(), fp)
	if img := c.load(ctx, key); img != nil {
		observability.Cache().OnCacheHit(ctx, "raster")
		c.remember(fp, img)
		return img, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "raster")

	img = c.Renderer.Render(ctx, b)
	c.remember(fp, img)
	c.save(ctx, key, img)
	return img, false, nil
}

// Invalidate drops the raster last produced for b.
func (c *Cached) Invalidate(ctx context.Context, b *badge.Badge) {
	c.mu.Lock()
	fp, ok := c.byBadge[b]
	if ok {
		delete(c.mem, fp)
		delete(c.byBadge, b)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.store.Delete(ctx, c.keyer.RasterKey(c.Renderer.Name(), fp)); err != nil {
		c.logger.Warn("raster cache delete failed", "badge", b.Name(), "err", err)
	}
}

// Reset empties the in-memory map. Persisted entries are untouched.
func (c *Cached) Reset() {
	c.mu.Lock()
	c.mem = make(map[string]image.Image)
	c.byBadge = make(map[*badge.Badge]string)
	c.mu.Unlock()
}

// Len returns the number of in-memory rasters.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

func (c *Cached) remember(fp string, img image.Image) {
	c.mu.Lock()
	if existing, ok := c.mem[fp]; ok {
		img = existing
	}
	c.mem[fp] = img
	c.mu.Unlock()
}

func (c *Cached) load(ctx context.Context, key string) image.Image {
	data, hit, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("raster cache read failed", "err", err)
		return nil
	}
	if !hit {
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		c.logger.Debug("discarding undecodable cache entry", "err", err)
		_ = c.store.Delete(ctx, key)
		return nil
	}
	return img
}

func (c *Cached) save(ctx context.Context, key string, img image.Image) {
	if _, isNull := c.store.(*cache.NullCache); isNull {
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		c.logger.Warn("raster encode failed", "err", err)
		return
	}
	if err := c.store.Set(ctx, key, buf.Bytes(), c.ttl); err != nil {
		c.logger.Warn("raster cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "raster", buf.Len())
}
