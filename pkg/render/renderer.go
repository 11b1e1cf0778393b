package render

import (
	"context"
	"image"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/golang/freetype/truetype"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/fonts"
	"github.com/osumercury/badgemaker/pkg/raster"
)

// Renderer draws a badge. Render must be safe to call from several
// goroutines at once as long as no property is being set concurrently.
type Renderer interface {
	// Name is the registry key, e.g. "classic".
	Name() string

	// Describe returns a one-line human description.
	Describe() string

	// Render returns a raster of exactly b.PixelSize(). It never fails:
	// missing resources are logged and the dependent step is skipped.
	Render(ctx context.Context, b *badge.Badge) image.Image

	ListProperties() []Property
	GetProperty(key string) (Value, bool)

	// SetProperty parses and stores value. On error the previous value is
	// kept.
	SetProperty(key, value string) error
}

// StateHasher is implemented by renderers whose output depends on state
// beyond their property values (for example a loaded script). The hash is
// folded into the render fingerprint.
type StateHasher interface {
	StateHash() string
}

// ResourceHasher is implemented by renderers that load images by path. The
// hash covers the contents of every file the render of b would read, so an
// edited logo or background yields a new fingerprint.
type ResourceHasher interface {
	ResourceHash(ctx context.Context, b *badge.Badge) string
}

// =============================================================================
// Environment
// =============================================================================

// Env carries the collaborators every renderer needs.
type Env struct {
	Images  *raster.ImageCache
	Fonts   *fonts.Library
	Logger  *log.Logger
	Quality raster.Quality
}

// WithDefaults fills nil collaborators: a private image cache, a font library
// and log.Default().
func (e Env) WithDefaults() Env {
	if e.Logger == nil {
		e.Logger = log.Default()
	}
	if e.Images == nil {
		e.Images = raster.NewImageCache(nil)
	}
	if e.Fonts == nil {
		e.Fonts = fonts.NewLibrary(fonts.WithLogger(e.Logger))
	}
	return e
}

// Image loads path through the shared cache. Failures are resource errors:
// they are logged and nil is returned so the caller skips the drawing step.
func (e Env) Image(ctx context.Context, path string) image.Image {
	if path == "" {
		return nil
	}
	img, err := e.Images.Get(ctx, path)
	if err != nil {
		e.Logger.Warn("image unavailable, skipping", "path", path, "err", err)
		return nil
	}
	return img
}

// ImageDigest returns the pixel digest of the image at path. A path that is
// empty or cannot be decoded hashes as "", matching a render that skips it.
func (e Env) ImageDigest(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	d, err := e.Images.Digest(ctx, path)
	if err != nil {
		return ""
	}
	return d
}

// BackgroundDigest returns the digest of b's background: the in-memory image
// when set, otherwise the file at b.BackgroundPath.
func (e Env) BackgroundDigest(ctx context.Context, b *badge.Badge) string {
	if b.Background != nil {
		return ""
	}
	return e.ImageDigest(ctx, b.BackgroundPath)
}

// =============================================================================
// Base implementation
// =============================================================================

// Base implements the property half of Renderer. Concrete renderers embed it
// and add Render.
type Base struct {
	Env   Env
	Props *Properties

	name        string
	description string
}

// NewBase creates a Base with the given schema. env is completed with
// WithDefaults.
func NewBase(name, description string, env Env, props ...Property) Base {
	return Base{
		Env:         env.WithDefaults(),
		Props:       NewProperties(props...),
		name:        name,
		description: description,
	}
}

// Name returns the registry key.
func (b *Base) Name() string { return b.name }

// Describe returns the description.
func (b *Base) Describe() string { return b.description }

// ListProperties returns the declared schema in order.
func (b *Base) ListProperties() []Property { return b.Props.List() }

// GetProperty returns the current value of key.
func (b *Base) GetProperty(key string) (Value, bool) { return b.Props.Get(key) }

// SetProperty parses and stores value.
func (b *Base) SetProperty(key, value string) error { return b.Props.Set(key, value) }

// Text rasterizes s with the shrink-to-fit rule using the font named by the
// "font" property and the "font-size-initial" reference size.
func (b *Base) Text(f *truetype.Font, s string, c color.Color, targetH, limitW int) image.Image {
	return raster.RasterizeText(f, float64(b.refSize()), s, c, targetH, limitW, b.Env.Quality)
}

// Font resolves the renderer's "font" property in style.
func (b *Base) Font(style fonts.Style) *truetype.Font {
	return b.Env.Fonts.Font(b.Props.String(PropFont), style)
}

func (b *Base) refSize() int {
	if v := b.Props.Int(PropFontSizeInitial); v > 0 {
		return v
	}
	return raster.ReferenceSize
}

// Property keys shared by the built-in renderers.
const (
	PropFont            = "font"
	PropFontSizeInitial = "font-size-initial"
)

// FontProperty declares the shared "font" property.
func FontProperty(def string) Property {
	return Property{Key: PropFont, Kind: String, Default: def, Description: "Font family name"}
}

// FontSizeProperty declares the shared reference size property.
func FontSizeProperty() Property {
	return Property{
		Key:         PropFontSizeInitial,
		Kind:        Integer,
		Default:     "200",
		Description: "Size text is rasterized at before scaling",
	}
}
