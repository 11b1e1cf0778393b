package render

import (
	"context"
	"fmt"
	"image"
	"reflect"
	"strings"
	"sync"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/cache"
	"github.com/osumercury/badgemaker/pkg/raster"
)

// Fingerprint hashes everything a render depends on: the badge content, its
// physical size and revision, the background pixels, the renderer name, its
// property values, any extra renderer state and the contents of the image
// files the renderer reads. Two equal fingerprints always produce the same
// raster.
func Fingerprint(ctx context.Context, b *badge.Badge, r Renderer) string {
	return fingerprint(ctx, b, r, raster.Digest)
}

func fingerprint(ctx context.Context, b *badge.Badge, r Renderer, digest func(image.Image) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "renderer=%s\n", r.Name())
	for _, p := range r.ListProperties() {
		v, _ := r.GetProperty(p.Key)
		fmt.Fprintf(&sb, "prop.%s=%s\n", p.Key, v.String())
	}
	if sh, ok := r.(StateHasher); ok {
		fmt.Fprintf(&sb, "state=%s\n", sh.StateHash())
	}
	if rh, ok := r.(ResourceHasher); ok {
		fmt.Fprintf(&sb, "resources=%s\n", rh.ResourceHash(ctx, b))
	}

	fmt.Fprintf(&sb, "number=%d\nprimary=%q\nsecondary=%q\n", b.Number, b.Primary, b.Secondary)
	fmt.Fprintf(&sb, "colors=%s,%s,%s\n",
		raster.FormatColor(b.BackgroundColor),
		raster.FormatColor(b.TextBackgroundColor),
		raster.FormatColor(b.TextColor))
	fmt.Fprintf(&sb, "fit=%s anchor=%s\n", b.Fit, b.Anchor)
	fmt.Fprintf(&sb, "size=%g,%g,%g rev=%d\n", b.Width(), b.Proportion(), b.Resolution(), b.Revision())
	for _, line := range b.Extra {
		fmt.Fprintf(&sb, "extra=%q\n", line)
	}
	fmt.Fprintf(&sb, "bgpath=%q\n", b.BackgroundPath)
	if b.Background != nil {
		fmt.Fprintf(&sb, "bg=%s\n", digest(b.Background))
	}
	return cache.Hash([]byte(sb.String()))
}

// digestMemo remembers image digests by identity. Backgrounds are shared,
// read-only and typically reused by many badges in a batch.
type digestMemo struct {
	mu   sync.Mutex
	seen map[image.Image]string
}

func newDigestMemo() *digestMemo {
	return &digestMemo{seen: make(map[image.Image]string)}
}

func (m *digestMemo) digest(img image.Image) string {
	// Only pointer-like dynamic types are usable as map keys here.
	if !reflect.TypeOf(img).Comparable() {
		return raster.Digest(img)
	}
	m.mu.Lock()
	d, ok := m.seen[img]
	m.mu.Unlock()
	if ok {
		return d
	}
	d = raster.Digest(img)
	m.mu.Lock()
	m.seen[img] = d
	m.mu.Unlock()
	return d
}
