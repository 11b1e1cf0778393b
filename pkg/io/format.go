package io

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
)

// Format is a roster file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported roster file %q (want .csv, .toml or .json)", path)
}

// Import reads the roster at path in the format named by its extension.
// Settings are returned for TOML batch files only.
func Import(ctx context.Context, path string, opts ReadOptions) ([]*badge.Badge, *Settings, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	switch format {
	case FormatCSV:
		badges, err := ImportCSV(ctx, path, opts)
		return badges, nil, err
	case FormatJSON:
		badges, err := ImportJSON(ctx, path, opts)
		return badges, nil, err
	default:
		b, err := ReadBatch(ctx, path, opts)
		if err != nil {
			return nil, nil, err
		}
		return b.Badges, &b.Settings, nil
	}
}

// Export writes badges to path in the format named by its extension.
// Settings are written for TOML only and may be nil.
func Export(path string, badges []*badge.Badge, s *Settings) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return ExportCSV(path, badges)
	case FormatJSON:
		return ExportJSON(path, badges)
	default:
		var settings Settings
		if s != nil {
			settings = *s
		}
		return ExportBatch(path, settings, badges)
	}
}
