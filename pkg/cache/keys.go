package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer names cache entries. Callers never format keys by hand, so the key
// scheme can change in one place.
type Keyer interface {
	// RasterKey identifies a rendered badge image.
	RasterKey(renderer, fingerprint string) string
}

// RasterKeyVersion is bumped whenever the encoded raster format changes so
// stale entries are never decoded.
const RasterKeyVersion = "v1"

// DefaultKeyer produces content-addressed keys of the form "raster:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RasterKey hashes the renderer name and fingerprint, so the key length is
// fixed regardless of input.
func (DefaultKeyer) RasterKey(renderer, fingerprint string) string {
	return "raster:" + Hash([]byte(strings.Join([]string{RasterKeyVersion, renderer, fingerprint}, "\x00")))
}

// ScopedKeyer prefixes every key so that independent events can share one
// Redis instance without colliding:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "regional-2024:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default scheme when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RasterKey returns the prefixed key of the wrapped scheme.
func (k *ScopedKeyer) RasterKey(renderer, fingerprint string) string {
	return k.prefix + k.inner.RasterKey(renderer, fingerprint)
}

// Hash returns the hex SHA-256 of data. It is shared by the fingerprint and
// digest code so that every content hash in the system has the same shape.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
