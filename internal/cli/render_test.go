package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/osumercury/badgemaker/pkg/errors"
	bio "github.com/osumercury/badgemaker/pkg/io"
	"github.com/osumercury/badgemaker/pkg/pipeline"
	"github.com/osumercury/badgemaker/pkg/render/builtin"
	"github.com/osumercury/badgemaker/pkg/render/script"
)

func testCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func writeRoster(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "teams.csv")
	data := "1,Team A,Oklahoma State University,,ffffff,000000,ffffff\n" +
		"2,Team B,University of Tulsa,,336699,000000,ffffff\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"single", []string{"font=Arial"}, map[string]string{"font": "Arial"}, false},
		{"value keeps spaces", []string{" text = a b "}, map[string]string{"text": " a b "}, false},
		{"value with equals", []string{"script=a=b"}, map[string]string{"script": "a=b"}, false},
		{"last wins", []string{"k=1", "k=2"}, map[string]string{"k": "2"}, false},
		{"missing equals", []string{"font"}, nil, true},
		{"empty key", []string{"=x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAssignments(%v) error = %v, wantErr %v", tt.pairs, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error code = %s, want INVALID_INPUT", errors.GetCode(err))
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseAssignments(%v) = %v, want %v", tt.pairs, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestRenderOptsResolve(t *testing.T) {
	tests := []struct {
		name        string
		opts        renderOpts
		wantFormats []string
		wantErr     bool
	}{
		{"png", renderOpts{input: "r.csv", pngDir: "out"}, []string{"png"}, false},
		{"jpg and pdf", renderOpts{input: "r.csv", jpgDir: "out", Options: pipeline.Options{PDFPath: "b.pdf"}}, []string{"jpg", "pdf"}, false},
		{"pdf only", renderOpts{input: "r.csv", Options: pipeline.Options{PDFPath: "b.pdf"}}, []string{"pdf"}, false},
		{"no roster", renderOpts{pngDir: "out"}, nil, true},
		{"file and mongo", renderOpts{input: "r.csv", mongoURI: "mongodb://x", pngDir: "out"}, nil, true},
		{"png and jpg", renderOpts{input: "r.csv", pngDir: "a", jpgDir: "b"}, nil, true},
		{"no output", renderOpts{input: "r.csv"}, nil, true},
		{"bad page", renderOpts{input: "r.csv", pngDir: "out", Options: pipeline.Options{Page: "B5"}}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.resolve()
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if strings.Join(opts.Formats, ",") != strings.Join(tt.wantFormats, ",") {
				t.Errorf("Formats = %v, want %v", opts.Formats, tt.wantFormats)
			}
		})
	}
}

func TestRenderOptsExplicitZeroMargin(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantMargin  float64
		wantSpacing float64
	}{
		{"defaults", nil, pipeline.DefaultMargin, pipeline.DefaultSpacing},
		{"zero margin and spacing", []string{"--margin", "0", "--spacing", "0"}, 0, 0},
		{"zero spacing", []string{"--spacing", "0"}, pipeline.DefaultMargin, 0},
		{"centimeters", []string{"--units", "cm", "--margin", "1"}, 1, pipeline.DefaultSpacing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := newRenderOpts()
			cmd := &cobra.Command{Use: "render"}
			opts.register(cmd)
			if err := cmd.ParseFlags(append([]string{"--pdf", "b.pdf"}, tt.args...)); err != nil {
				t.Fatal(err)
			}
			opts.markChanged(cmd)
			opts.input = "r.csv"
			if err := opts.resolve(); err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if opts.Margin != tt.wantMargin || opts.Spacing != tt.wantSpacing {
				t.Errorf("margin/spacing = %v/%v, want %v/%v", opts.Margin, opts.Spacing, tt.wantMargin, tt.wantSpacing)
			}
		})
	}
}

func TestRenderOptsConfigure(t *testing.T) {
	settings := &bio.Settings{
		Renderer: bio.RendererSection{
			Name:       "certificate",
			Properties: map[string]any{"font": "Serif", "primary-height": 0.2},
		},
	}

	t.Run("settings then set", func(t *testing.T) {
		opts := renderOpts{sets: []string{"font=Mono"}}
		if err := opts.configure(settings); err != nil {
			t.Fatal(err)
		}
		if opts.Renderer != "certificate" {
			t.Errorf("Renderer = %q, want certificate", opts.Renderer)
		}
		if opts.Properties["font"] != "Mono" {
			t.Errorf("font = %q, want Mono", opts.Properties["font"])
		}
		if opts.Properties["primary-height"] != "0.2" {
			t.Errorf("primary-height = %q, want 0.2", opts.Properties["primary-height"])
		}
	})

	t.Run("flag renderer wins", func(t *testing.T) {
		opts := renderOpts{}
		opts.Renderer = "classic"
		if err := opts.configure(settings); err != nil {
			t.Fatal(err)
		}
		if opts.Renderer != "classic" {
			t.Errorf("Renderer = %q, want classic", opts.Renderer)
		}
	})

	t.Run("script flag", func(t *testing.T) {
		opts := renderOpts{script: "badge.txt"}
		if err := opts.configure(nil); err != nil {
			t.Fatal(err)
		}
		if opts.Renderer != script.Name {
			t.Errorf("Renderer = %q, want %q", opts.Renderer, script.Name)
		}
		if opts.Properties[script.PropScriptFile] != "badge.txt" {
			t.Errorf("script-file = %q", opts.Properties[script.PropScriptFile])
		}
	})

	t.Run("default renderer", func(t *testing.T) {
		opts := renderOpts{}
		if err := opts.configure(nil); err != nil {
			t.Fatal(err)
		}
		if opts.Renderer != builtin.DefaultRenderer {
			t.Errorf("Renderer = %q, want %q", opts.Renderer, builtin.DefaultRenderer)
		}
	})

	t.Run("bad set", func(t *testing.T) {
		opts := renderOpts{sets: []string{"oops"}}
		if err := opts.configure(nil); err == nil {
			t.Error("configure() accepted a malformed --set")
		}
	})
}

func TestRenderOptsBadgeSize(t *testing.T) {
	file := &bio.Settings{Size: &bio.Size{Width: 3, Height: 4, Resolution: 100}}

	opts := renderOpts{size: bio.Size{Width: 2, Height: 2.5, Resolution: 300}}
	opts.sizeChanged = [3]bool{false, true, false}
	got, err := opts.badgeSize(file)
	if err != nil {
		t.Fatal(err)
	}
	want := bio.Size{Width: 3, Height: 2.5, Resolution: 100}
	if got != want {
		t.Errorf("badgeSize() = %+v, want %+v", got, want)
	}

	got, err = opts.badgeSize(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != opts.size {
		t.Errorf("badgeSize(nil) = %+v, want flags %+v", got, opts.size)
	}

	bad := renderOpts{size: bio.Size{Width: 0, Height: 1, Resolution: 300}}
	if _, err := bad.badgeSize(nil); err == nil {
		t.Error("badgeSize() accepted a zero width")
	}
}

func TestMergeSettings(t *testing.T) {
	file := &bio.Settings{
		Size:     &bio.Size{Width: 1, Height: 1, Resolution: 10},
		Renderer: bio.RendererSection{Name: "classic", Properties: map[string]any{"font": "A", "font-bold": "no"}},
	}
	roster := &bio.Settings{
		Renderer: bio.RendererSection{Properties: map[string]any{"font": "B"}},
	}

	got := mergeSettings(file, roster)
	if got.Renderer.Name != "classic" {
		t.Errorf("Name = %q, want classic", got.Renderer.Name)
	}
	if got.Size == nil || got.Size.Width != 1 {
		t.Errorf("Size = %+v, want the file size", got.Size)
	}
	if got.Renderer.Properties["font"] != "B" || got.Renderer.Properties["font-bold"] != "no" {
		t.Errorf("Properties = %v", got.Renderer.Properties)
	}
	if file.Renderer.Properties["font"] != "A" {
		t.Error("mergeSettings modified its input")
	}
	if mergeSettings(file, nil) != file {
		t.Error("mergeSettings(file, nil) should return file")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)
	out := filepath.Join(dir, "out")
	pdf := filepath.Join(dir, "badges.pdf")

	root := testCLI().RootCommand()
	root.SetArgs([]string{
		"render", roster,
		"--png", out,
		"--pdf", pdf,
		"--width", "0.5", "--height", "0.5", "--resolution", "40",
		"--no-cache",
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, name := range []string{"1-Team A.png", "2-Team B.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(pdf)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no output", []string{"render", roster}, errors.ErrCodeInvalidInput},
		{"missing roster", []string{"render", filepath.Join(dir, "none.csv"), "--png", dir, "--no-cache"}, errors.ErrCodeFileNotFound},
		{"unknown renderer", []string{"render", roster, "--png", dir, "--renderer", "nope", "--no-cache"}, errors.ErrCodeUnknownRenderer},
		{"bad units", []string{"render", roster, "--pdf", filepath.Join(dir, "x.pdf"), "--units", "furlong"}, errors.ErrCodeInvalidPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testCLI().RootCommand()
			root.SetArgs(tt.args)
			root.SetErr(io.Discard)
			err := root.ExecuteContext(context.Background())
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)
	out := filepath.Join(dir, "teams.json")

	root := testCLI().RootCommand()
	root.SetArgs([]string{"convert", roster, out})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("convert: %v", err)
	}

	badges, err := bio.ImportJSON(context.Background(), out, bio.ReadOptions{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if len(badges) != 2 || badges[1].Primary != "Team B" {
		t.Errorf("converted roster = %v", badges)
	}
}

func TestConvertCommandRejectsUnknownOutput(t *testing.T) {
	dir := t.TempDir()
	roster := writeRoster(t, dir)

	root := testCLI().RootCommand()
	root.SetArgs([]string{"convert", roster, filepath.Join(dir, "teams.xlsx")})
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestPropertiesCommand(t *testing.T) {
	var out bytes.Buffer
	root := testCLI().RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"properties", "classic"})
	if err := root.Execute(); err != nil {
		t.Fatalf("properties: %v", err)
	}
	for _, want := range []string{"classic", "Key", "primary-height", "FLOAT", "font-size-initial"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}

	root = testCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"properties", "nope"})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeUnknownRenderer) {
		t.Errorf("error = %v, want UNKNOWN_RENDERER", err)
	}
}
