// Package script implements a renderer driven by a line-oriented drawing
// script.
//
// Each line is one instruction:
//
//	poly fill textbg 0,0 100,0 100,20 0,20
//	oval stroke 000000 50 50 30 20
//	circle fill ff0000 90 10 width 8
//	primarytext text sans bold centered 80 90 15 center
//	text "Mercury 2024" 000000 sans plain left 2 30 5
//	blit logo.png height 20 centered top 60
//
// Coordinates are percentages of the badge size. Lines are parsed and run
// independently: a bad line is logged with its number and skipped, and the
// rest of the script still draws.
package script

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/cache"
	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/observability"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
)

// Name is the registry key.
const Name = "script"

// Property keys.
const (
	PropScriptFile      = "script-file"
	PropInitialFontSize = "initial-font-size"
)

// Script is a parsed program.
type Script struct {
	Path  string
	Dir   string
	Lines []Line
	hash  string
}

// Errors returns the parse errors in line order.
func (s *Script) Errors() []*LineError {
	var errs []*LineError
	for _, l := range s.Lines {
		if l.Err != nil {
			errs = append(errs, l.Err)
		}
	}
	return errs
}

// Renderer runs a script against each badge.
type Renderer struct {
	render.Base

	mu     sync.RWMutex
	script *Script
}

// New creates a script renderer with no script loaded.
func New(env render.Env) render.Renderer {
	return &Renderer{
		Base: render.NewBase(Name, "Scriptable renderer", env,
			render.Property{Key: PropScriptFile, Kind: render.String, Description: "Script file to execute"},
			render.Property{Key: PropInitialFontSize, Kind: render.Integer, Default: "200", Description: "Size text is rasterized at before scaling"},
		),
	}
}

// SetProperty loads the script when script-file changes. If the file cannot
// be read the error is returned and the previous script stays active.
func (r *Renderer) SetProperty(key, value string) error {
	if key != PropScriptFile {
		return r.Base.SetProperty(key, value)
	}
	if err := r.LoadFile(value); err != nil {
		return err
	}
	return r.Base.SetProperty(key, value)
}

// LoadFile reads and parses the script at path. Relative blit paths resolve
// against the script's directory.
func (r *Renderer) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "read script %s", path)
		}
		return errors.Wrap(errors.ErrCodeIO, err, "read script %s", path)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	r.setScript(path, lines, filepath.Dir(path))
	return nil
}

// SetScript replaces the program. Parse errors are logged once here and
// again, at debug level, on every render.
func (r *Renderer) SetScript(lines []string, dir string) {
	r.setScript("", lines, dir)
}

func (r *Renderer) setScript(path string, lines []string, dir string) {
	s := &Script{Path: path, Dir: dir, Lines: Parse(lines)}
	s.hash = cache.Hash([]byte(dir + "\x00" + strings.Join(lines, "\n")))
	for _, err := range s.Errors() {
		r.Env.Logger.Warn("script line rejected", "line", err.Line, "text", err.Text, "reason", err.Err)
	}

	r.mu.Lock()
	r.script = s
	r.mu.Unlock()
}

// Script returns the active program, or nil.
func (r *Renderer) Script() *Script {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.script
}

// StateHash implements render.StateHasher.
func (r *Renderer) StateHash() string {
	if s := r.Script(); s != nil {
		return s.hash
	}
	return ""
}

// ResourceHash implements render.ResourceHasher over every blit source the
// script draws for b, in script order.
func (r *Renderer) ResourceHash(ctx context.Context, b *badge.Badge) string {
	s := r.Script()
	if s == nil {
		return ""
	}
	var sb strings.Builder
	for _, l := range s.Lines {
		in, ok := l.Instr.(*blitInstr)
		if !ok {
			continue
		}
		if in.path == BackgroundToken {
			sb.WriteString(r.Env.BackgroundDigest(ctx, b))
		} else {
			sb.WriteString(r.Env.ImageDigest(ctx, in.resolve(s.Dir)))
		}
		sb.WriteByte(',')
	}
	return sb.String()
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, b *badge.Badge) image.Image {
	w, h := b.PixelSize()
	dc := raster.NewCanvas(w, h, b.BackgroundColor)

	s := r.Script()
	if s == nil || len(s.Lines) == 0 {
		r.Env.Logger.Error("script is undefined", "badge", b.Name())
		return dc.Image()
	}

	refSize := float64(r.Props.Int(PropInitialFontSize))
	if refSize <= 0 {
		refSize = raster.ReferenceSize
	}
	st := &State{Ctx: ctx, DC: dc, Badge: b, Env: r.Env, Dir: s.Dir, RefSz: refSize, W: w, H: h}

	for _, l := range s.Lines {
		if l.Err != nil {
			r.Env.Logger.Debug("skipping line", "script", s.Path, "line", l.Number, "text", l.Text, "reason", l.Err.Err)
			observability.Pipeline().OnInstructionError(ctx, s.Path, l.Number, l.Err)
			continue
		}
		if err := run(l.Instr, st); err != nil {
			lerr := &LineError{Line: l.Number, Text: l.Text, Err: err}
			r.Env.Logger.Warn("instruction failed", "script", s.Path, "line", l.Number, "text", l.Text, "reason", err)
			observability.Pipeline().OnInstructionError(ctx, s.Path, l.Number, lerr)
		}
	}
	return dc.Image()
}

// run executes one instruction, converting a panic into an error so a single
// line can never abort the render.
func run(in Instruction, st *State) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return in.Exec(st)
}
