// Package source defines where badge rosters come from.
//
// A [Source] yields fully built badges: sizes applied, colors parsed and
// background images decoded. Implementations live in subpackages:
//
//   - local: CSV, TOML or JSON files, chosen by extension
//   - mongo: a MongoDB collection of roster records
package source

import (
	"context"

	"github.com/osumercury/badgemaker/pkg/badge"
)

// Source loads a roster.
type Source interface {
	Load(ctx context.Context) ([]*badge.Badge, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) ([]*badge.Badge, error)

// Load calls f.
func (f Func) Load(ctx context.Context) ([]*badge.Badge, error) { return f(ctx) }
