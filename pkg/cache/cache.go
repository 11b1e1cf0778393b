// Package cache stores rendered badge rasters between runs.
//
// Rendering a badge is deterministic: the same renderer, property values and
// badge content always produce the same pixels. The render package hashes
// those inputs into a fingerprint and uses a [Cache] to skip re-rendering.
//
// Three backends are provided:
//   - [FileCache]: a directory of JSON entries, the CLI default
//   - [RedisCache]: a shared cache for the preview server
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that callers never format keys by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache disables caching: every Get misses and writes are dropped.
type NullCache struct{}

var _ Cache = (*NullCache)(nil)

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
