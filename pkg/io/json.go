package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
)

// Document is the JSON roster.
type Document struct {
	Size   *Size    `json:"size,omitempty"`
	Badges []Record `json:"badges"`
}

// ReadJSON decodes a roster from r and builds the badges. The document's size,
// when present, overrides opts.Size. ReadJSON does not close r.
func ReadJSON(ctx context.Context, r io.Reader, opts ReadOptions) ([]*badge.Badge, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON")
	}
	if doc.Size != nil {
		if err := doc.Size.Validate(); err != nil {
			return nil, err
		}
		opts.Size = *doc.Size
	}
	return Badges(ctx, doc.Badges, opts), nil
}

// ImportJSON reads the JSON roster at path.
func ImportJSON(ctx context.Context, path string, opts ReadOptions) ([]*badge.Badge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	opts.Dir = filepath.Dir(path)
	badges, err := ReadJSON(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return badges, nil
}

// WriteJSON encodes badges as an indented document. The size is taken from
// the first badge.
func WriteJSON(w io.Writer, badges []*badge.Badge) error {
	doc := Document{Badges: make([]Record, len(badges))}
	for i, b := range badges {
		doc.Badges[i] = FromBadge(b, b.BackgroundPath)
	}
	if len(badges) > 0 {
		size := SizeOf(badges[0])
		doc.Size = &size
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode JSON")
	}
	return nil
}

// ExportJSON writes badges to the file at path.
func ExportJSON(path string, badges []*badge.Badge) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, badges) })
}
