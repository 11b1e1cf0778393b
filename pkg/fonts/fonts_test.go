package fonts

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/gofont/gobold"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		input string
		want  Style
	}{
		{"plain", Regular},
		{"", Regular},
		{"bold", Bold},
		{"Italic", Italic},
		{"bolditalic", Bold | Italic},
		{"italic,bold", Bold | Italic},
	}
	for _, tt := range tests {
		if got := ParseStyle(tt.input); got != tt.want {
			t.Errorf("ParseStyle(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDefaultNamesUseBundledFonts(t *testing.T) {
	l := NewLibrary(WithFinder(func(string) (string, error) {
		t.Fatal("finder should not be called for the default family")
		return "", nil
	}))

	for _, name := range []string{"", "sans", "Default", "SansSerif"} {
		if got := l.Font(name, Bold); got != Fallback(Bold) {
			t.Errorf("Font(%q, Bold) should be the bundled bold face", name)
		}
	}
	if l.Font("mono", Regular) == nil {
		t.Error("Font(mono) should resolve")
	}
}

func TestUnknownFontFallsBackWithWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	l := NewLibrary(
		WithLogger(logger),
		WithFinder(func(string) (string, error) { return "", errors.New("not found") }),
	)

	f := l.Font("No Such Font", Italic)
	if f != Fallback(Italic) {
		t.Error("unknown font should fall back to the bundled italic face")
	}
	if buf.Len() == 0 {
		t.Error("fallback should log a warning")
	}

	buf.Reset()
	l.Font("No Such Font", Italic)
	if buf.Len() != 0 {
		t.Error("cached fallback should not warn twice")
	}
}

func TestFinderResolvesStyledCandidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Custom-Bold.ttf")
	if err := os.WriteFile(path, gobold.TTF, 0o644); err != nil {
		t.Fatal(err)
	}

	var tried []string
	l := NewLibrary(WithFinder(func(name string) (string, error) {
		tried = append(tried, name)
		if name == "Custom-Bold" {
			return path, nil
		}
		return "", errors.New("not found")
	}))

	f := l.Font("Custom", Bold)
	if f == nil {
		t.Fatal("Font returned nil")
	}
	if f == Fallback(Bold) {
		t.Error("resolved font should be parsed from the file, not the fallback")
	}
	if len(tried) == 0 || tried[0] != "Custom-Bold" {
		t.Errorf("first candidate = %v, want Custom-Bold", tried)
	}
}
