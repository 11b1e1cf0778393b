package raster

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/osumercury/badgemaker/pkg/observability"
)

// Decoder loads and decodes an image file.
type Decoder func(path string) (image.Image, error)

// DecodeFile decodes path with imaging, applying EXIF orientation.
func DecodeFile(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// ImageCache maps file paths to decoded images so repeatedly referenced
// backgrounds and logos are decoded once. Entries live until invalidated.
//
// Each entry keeps the pixel digest of its image, so render fingerprints can
// follow file contents rather than file names.
//
// ImageCache is safe for concurrent use. Lookups take a read lock; a miss
// decodes outside the lock and the first decode to be stored wins, so two
// batches racing on the same path share a single image.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]imageEntry
	decode  Decoder
}

type imageEntry struct {
	img    image.Image
	digest string
}

// NewImageCache creates an empty cache. A nil decoder means DecodeFile.
func NewImageCache(decode Decoder) *ImageCache {
	if decode == nil {
		decode = DecodeFile
	}
	return &ImageCache{
		entries: make(map[string]imageEntry),
		decode:  decode,
	}
}

// Get returns the decoded image for path, decoding it on first use.
// Decode failures are not cached.
func (c *ImageCache) Get(ctx context.Context, path string) (image.Image, error) {
	e, err := c.entry(ctx, path)
	return e.img, err
}

// Digest returns the pixel digest of the image at path, decoding it on first
// use. The digest always describes the image Get returns for the same path.
func (c *ImageCache) Digest(ctx context.Context, path string) (string, error) {
	e, err := c.entry(ctx, path)
	return e.digest, err
}

func (c *ImageCache) entry(ctx context.Context, path string) (imageEntry, error) {
	key := cacheKey(path)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		observability.Cache().OnCacheHit(ctx, "image")
		return e, nil
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	decoded, err := c.decode(path)
	if err != nil {
		return imageEntry{}, fmt.Errorf("decode %s: %w", path, err)
	}
	e = imageEntry{img: decoded, digest: Digest(decoded)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = e
	b := decoded.Bounds()
	observability.Cache().OnCacheSet(ctx, "image", b.Dx()*b.Dy()*4)
	return e, nil
}

// Invalidate removes the entry for path.
func (c *ImageCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, cacheKey(path))
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]imageEntry)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
