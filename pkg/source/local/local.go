// Package local loads rosters from files on disk.
package local

import (
	"context"

	"github.com/osumercury/badgemaker/pkg/badge"
	bio "github.com/osumercury/badgemaker/pkg/io"
	"github.com/osumercury/badgemaker/pkg/source"
)

// Source reads one roster file. The format follows the extension: .csv,
// .toml or .json.
type Source struct {
	path     string
	opts     bio.ReadOptions
	settings *bio.Settings
}

// New creates a source for path. opts.Size applies unless the file carries
// its own size.
func New(path string, opts bio.ReadOptions) *Source {
	return &Source{path: path, opts: opts}
}

// Path returns the roster file.
func (s *Source) Path() string { return s.path }

// Load reads the file.
func (s *Source) Load(ctx context.Context) ([]*badge.Badge, error) {
	badges, settings, err := bio.Import(ctx, s.path, s.opts)
	if err != nil {
		return nil, err
	}
	s.settings = settings
	return badges, nil
}

// Settings returns the renderer settings embedded in a TOML batch file after
// Load, or nil.
func (s *Source) Settings() *bio.Settings { return s.settings }

var _ source.Source = (*Source)(nil)
