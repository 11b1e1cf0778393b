// Package fonts resolves font names to parsed TrueType fonts.
//
// Names are looked up in the platform font directories. The Go font family
// is bundled into the binary and serves both as the default face ("sans")
// and as the fallback for names that cannot be resolved, so text always
// renders even on machines without the requested font.
package fonts

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultName selects the bundled sans-serif family.
const DefaultName = "sans"

// Style is a bitmask of font variations.
type Style int

const (
	Regular Style = 0
	Bold    Style = 1 << 0
	Italic  Style = 1 << 1
)

// ParseStyle reads a style token such as "bold", "italic", "bolditalic" or
// "plain". Unrecognized text yields Regular.
func ParseStyle(s string) Style {
	s = strings.ToLower(s)
	var st Style
	if strings.Contains(s, "bold") {
		st |= Bold
	}
	if strings.Contains(s, "italic") {
		st |= Italic
	}
	return st
}

// String returns a human-readable style name.
func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Bold | Italic:
		return "bold italic"
	default:
		return "regular"
	}
}

// Finder maps a font name to a font file path.
type Finder func(name string) (string, error)

// Option configures a Library.
type Option func(*Library)

// WithFinder replaces the platform font lookup.
func WithFinder(f Finder) Option {
	return func(l *Library) { l.find = f }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *log.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

type fontKey struct {
	name  string
	style Style
}

// Library caches parsed fonts by name and style. Parsed fonts are immutable
// and safe to share; faces built from them are not and must be created per
// use. Library is safe for concurrent use.
type Library struct {
	mu     sync.Mutex
	fonts  map[fontKey]*truetype.Font
	find   Finder
	logger *log.Logger
}

// NewLibrary creates a library that resolves names with go-findfont.
func NewLibrary(opts ...Option) *Library {
	l := &Library{
		fonts:  make(map[fontKey]*truetype.Font),
		find:   findfont.Find,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Font returns the font for name and style. Unresolvable names fall back to
// the bundled Go font with a warning; Font never fails.
func (l *Library) Font(name string, style Style) *truetype.Font {
	key := fontKey{name: strings.TrimSpace(name), style: style}

	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.fonts[key]; ok {
		return f
	}

	f, err := l.load(key.name, style)
	if err != nil {
		l.logger.Warn("font unavailable, using default", "font", name, "style", style, "err", err)
		f = Fallback(style)
	}
	l.fonts[key] = f
	return f
}

func (l *Library) load(name string, style Style) (*truetype.Font, error) {
	switch strings.ToLower(name) {
	case "", DefaultName, "default", "sans-serif", "sansserif", "dialog":
		return Fallback(style), nil
	case "mono", "monospace", "monospaced":
		return mono(style), nil
	}

	var lastErr error
	for _, candidate := range candidates(name, style) {
		path, err := l.find(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			lastErr = fmt.Errorf("parse %s: %w", path, err)
			continue
		}
		return f, nil
	}
	return nil, lastErr
}

// candidates lists file-name variants to try for a styled face, most specific
// first, ending with the bare family name.
func candidates(name string, style Style) []string {
	switch style {
	case Bold:
		return []string{name + "-Bold", name + " Bold", name + "bd", name}
	case Italic:
		return []string{name + "-Italic", name + " Italic", name + "i", name}
	case Bold | Italic:
		return []string{name + "-BoldItalic", name + " Bold Italic", name + "bi", name + "-Bold", name}
	default:
		return []string{name + "-Regular", name}
	}
}

// =============================================================================
// Bundled Go fonts
// =============================================================================

var (
	bundledOnce sync.Once
	bundled     map[Style]*truetype.Font
	monoFonts   map[Style]*truetype.Font
)

func loadBundled() {
	bundled = map[Style]*truetype.Font{
		Regular:       mustParse(goregular.TTF),
		Bold:          mustParse(gobold.TTF),
		Italic:        mustParse(goitalic.TTF),
		Bold | Italic: mustParse(gobolditalic.TTF),
	}
	monoFonts = map[Style]*truetype.Font{
		Regular: mustParse(gomono.TTF),
		Bold:    mustParse(gomonobold.TTF),
	}
}

func mustParse(data []byte) *truetype.Font {
	f, err := truetype.Parse(data)
	if err != nil {
		panic(fmt.Sprintf("fonts: bundled font is invalid: %v", err))
	}
	return f
}

// Fallback returns the bundled Go font for style.
func Fallback(style Style) *truetype.Font {
	bundledOnce.Do(loadBundled)
	return bundled[style&(Bold|Italic)]
}

func mono(style Style) *truetype.Font {
	bundledOnce.Do(loadBundled)
	return monoFonts[style&Bold]
}
