package io

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/render"
)

// RendererSection names a renderer and its property values. Values may be
// written as TOML numbers or strings; they are applied as their string form.
type RendererSection struct {
	Name       string         `toml:"name,omitempty" json:"name,omitempty"`
	Properties map[string]any `toml:"properties,omitempty" json:"properties,omitempty"`
}

// PropertyStrings returns the properties in the form SetProperty takes.
func (s RendererSection) PropertyStrings() map[string]string {
	out := make(map[string]string, len(s.Properties))
	for k, v := range s.Properties {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// Settings is a renderer configuration file: badge size plus renderer.
type Settings struct {
	Size     *Size           `toml:"size,omitempty"`
	Renderer RendererSection `toml:"renderer"`
}

// Apply sets every stored property on r and returns the rejected ones.
func (s Settings) Apply(r render.Renderer) []error {
	return render.ApplyProperties(r, s.Renderer.PropertyStrings())
}

// Batch is a TOML batch file: settings plus the roster.
type Batch struct {
	Settings
	Records []Record `toml:"badge"`

	// Badges is filled by ReadBatch.
	Badges []*badge.Badge `toml:"-"`
}

// DecodeBatch parses a batch file without building badges.
func DecodeBatch(r io.Reader) (*Batch, error) {
	var b Batch
	md, err := toml.NewDecoder(r).Decode(&b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %v", undecoded)
	}
	if b.Size != nil {
		if err := b.Size.Validate(); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

// ReadBatch reads the batch file at path and builds its badges. The file's
// [size] table, when present, overrides opts.Size.
func ReadBatch(ctx context.Context, path string, opts ReadOptions) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	b, err := DecodeBatch(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts.Dir = filepath.Dir(path)
	if b.Size != nil {
		opts.Size = *b.Size
	}
	b.Badges = Badges(ctx, b.Records, opts)
	return b, nil
}

// WriteBatch encodes badges with the given settings.
func WriteBatch(w io.Writer, s Settings, badges []*badge.Badge) error {
	b := Batch{Settings: s, Records: make([]Record, len(badges))}
	for i, bd := range badges {
		b.Records[i] = FromBadge(bd, bd.BackgroundPath)
	}
	if err := toml.NewEncoder(w).Encode(b); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode TOML")
	}
	return nil
}

// ExportBatch writes badges and settings to the TOML file at path.
func ExportBatch(path string, s Settings, badges []*badge.Badge) error {
	return writeFile(path, func(w io.Writer) error { return WriteBatch(w, s, badges) })
}

// ReadSettings reads a settings file. Any [[badge]] records are ignored.
func ReadSettings(r io.Reader) (Settings, error) {
	b, err := DecodeBatch(r)
	if err != nil {
		return Settings{}, err
	}
	return b.Settings, nil
}

// LoadSettings reads the settings file at path.
func LoadSettings(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, openError(path, err)
	}
	defer f.Close()
	s, err := ReadSettings(f)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// CaptureSettings records size and the current property values of r.
func CaptureSettings(r render.Renderer, size Size) Settings {
	props := make(map[string]any)
	for _, p := range r.ListProperties() {
		if v, ok := r.GetProperty(p.Key); ok {
			props[p.Key] = v.String()
		}
	}
	return Settings{
		Size:     &size,
		Renderer: RendererSection{Name: r.Name(), Properties: props},
	}
}

// WriteSettings encodes s.
func WriteSettings(w io.Writer, s Settings) error {
	if err := toml.NewEncoder(w).Encode(s); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode TOML")
	}
	return nil
}

// SaveSettings writes s to path.
func SaveSettings(path string, s Settings) error {
	return writeFile(path, func(w io.Writer) error { return WriteSettings(w, s) })
}
