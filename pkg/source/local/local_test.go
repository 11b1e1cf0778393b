package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/osumercury/badgemaker/pkg/errors"
	bio "github.com/osumercury/badgemaker/pkg/io"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	opts := bio.ReadOptions{Logger: log.New(io.Discard)}

	csvPath := filepath.Join(dir, "r.csv")
	if err := os.WriteFile(csvPath, []byte("1,A,B,,ffffff,000000,ffffff\n"), 0644); err != nil {
		t.Fatal(err)
	}
	src := New(csvPath, opts)
	badges, err := src.Load(context.Background())
	if err != nil || len(badges) != 1 {
		t.Fatalf("Load csv = %d badges, %v", len(badges), err)
	}
	if src.Settings() != nil {
		t.Error("CSV source reported settings")
	}

	tomlPath := filepath.Join(dir, "r.toml")
	data := "[renderer]\nname = \"certificate\"\n\n[[badge]]\nnumber = 1\nprimary = \"A\"\n"
	if err := os.WriteFile(tomlPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	src = New(tomlPath, opts)
	if _, err := src.Load(context.Background()); err != nil {
		t.Fatalf("Load toml: %v", err)
	}
	if s := src.Settings(); s == nil || s.Renderer.Name != "certificate" {
		t.Errorf("Settings = %+v", s)
	}

	if _, err := New(filepath.Join(dir, "r.txt"), opts).Load(context.Background()); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unsupported extension err = %v", err)
	}
}
