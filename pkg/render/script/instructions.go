package script

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/fonts"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
)

// Instruction is one parsed script line.
type Instruction interface {
	Exec(s *State) error
}

// State is the per-render drawing state handed to each instruction.
type State struct {
	Ctx   context.Context
	DC    *gg.Context
	Badge *badge.Badge
	Env   render.Env
	Dir   string // base directory for relative blit paths
	RefSz float64
	W, H  int
}

// LineError reports a script line that could not be parsed or executed.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Line is a script line with its parse result.
type Line struct {
	Number int
	Text   string
	Instr  Instruction
	Err    *LineError
}

// Parse parses every line independently. Blank lines produce no entry;
// a line that fails to parse carries its error and does not affect others.
func Parse(lines []string) []Line {
	out := make([]Line, 0, len(lines))
	for i, text := range lines {
		tokens := Tokenize(text)
		if len(tokens) == 0 {
			continue
		}
		l := Line{Number: i + 1, Text: text}
		instr, err := parseInstruction(tokens)
		if err != nil {
			l.Err = &LineError{Line: l.Number, Text: text, Err: err}
		} else {
			l.Instr = instr
		}
		out = append(out, l)
	}
	return out
}

func parseInstruction(tok []string) (Instruction, error) {
	switch tok[0] {
	case "poly":
		if len(tok) < 4 {
			return nil, arity(tok[0], "fill|stroke <color> <x,y>...")
		}
		fill, err := parseMode(tok[1])
		if err != nil {
			return nil, err
		}
		return parsePoly(fill, tok[2], tok[3:])
	case "polyfill", "polyedge":
		if len(tok) < 3 {
			return nil, arity(tok[0], "<color> <x,y>...")
		}
		return parsePoly(tok[0] == "polyfill", tok[1], tok[2:])
	case "oval":
		return parseOval(tok)
	case "circle":
		return parseCircle(tok)
	case "primarytext", "secondarytext", "number":
		return parseText(fieldSource(tok[0]), "", tok[1:])
	case "text":
		if len(tok) < 2 {
			return nil, arity(tok[0], "<literal> <color> <font> <style> <x> <y> <w> <h> [justify]")
		}
		return parseText(sourceLiteral, tok[1], tok[2:])
	case "blit":
		return parseBlit(tok)
	}
	return nil, fmt.Errorf("unknown instruction %q", tok[0])
}

func arity(name, usage string) error {
	return fmt.Errorf("usage: %s %s", name, usage)
}

func parseMode(tok string) (fill bool, err error) {
	switch tok {
	case "fill":
		return true, nil
	case "stroke":
		return false, nil
	}
	return false, &SyntaxError{Token: tok, Want: "fill or stroke"}
}

// =============================================================================
// Colors
// =============================================================================

// colorRef is a badge color keyword or a literal color.
type colorRef struct {
	keyword string
	literal color.NRGBA
}

func parseColorRef(tok string) colorRef {
	switch tok {
	case "bg", "textbg", "text":
		return colorRef{keyword: tok}
	}
	return colorRef{literal: raster.ColorOrBlack(tok)}
}

func (c colorRef) resolve(b *badge.Badge) color.NRGBA {
	switch c.keyword {
	case "bg":
		return b.BackgroundColor
	case "textbg":
		return b.TextBackgroundColor
	case "text":
		return b.TextColor
	}
	return c.literal
}

// =============================================================================
// Shapes
// =============================================================================

type polyInstr struct {
	fill  bool
	color colorRef
	pts   [][2]float64
}

func parsePoly(fill bool, colorTok string, pointToks []string) (Instruction, error) {
	in := &polyInstr{fill: fill, color: parseColorRef(colorTok)}
	for _, p := range pointToks {
		x, y, err := parsePair(p)
		if err != nil {
			return nil, err
		}
		in.pts = append(in.pts, [2]float64{x, y})
	}
	return in, nil
}

func (in *polyInstr) Exec(s *State) error {
	pts := make([]raster.Point, len(in.pts))
	for i, p := range in.pts {
		pts[i] = raster.Point{
			X: float64(int(p[0] / 100 * float64(s.W-1))),
			Y: float64(int(p[1] / 100 * float64(s.H-1))),
		}
	}
	c := in.color.resolve(s.Badge)
	if in.fill {
		raster.FillPolygon(s.DC, pts, c)
	} else {
		raster.StrokePolygon(s.DC, pts, c)
	}
	return nil
}

type ovalInstr struct {
	fill           bool
	color          colorRef
	cx, cy, rw, rh float64 // percentages
	circle         bool
	byWidth        bool
}

func parseOval(tok []string) (Instruction, error) {
	if len(tok) != 7 {
		return nil, arity(tok[0], "fill|stroke <color> <cx> <cy> <w> <h>")
	}
	fill, err := parseMode(tok[1])
	if err != nil {
		return nil, err
	}
	nums, err := parseNumbers(tok[3:7])
	if err != nil {
		return nil, err
	}
	return &ovalInstr{fill: fill, color: parseColorRef(tok[2]), cx: nums[0], cy: nums[1], rw: nums[2], rh: nums[3]}, nil
}

func parseCircle(tok []string) (Instruction, error) {
	if len(tok) != 7 {
		return nil, arity(tok[0], "fill|stroke <color> <cx> <cy> width|height <d>")
	}
	fill, err := parseMode(tok[1])
	if err != nil {
		return nil, err
	}
	if tok[5] != "width" && tok[5] != "height" {
		return nil, &SyntaxError{Token: tok[5], Want: "width or height"}
	}
	nums, err := parseNumbers([]string{tok[3], tok[4], tok[6]})
	if err != nil {
		return nil, err
	}
	return &ovalInstr{
		fill: fill, color: parseColorRef(tok[2]),
		cx: nums[0], cy: nums[1], rw: nums[2], rh: nums[2],
		circle: true, byWidth: tok[5] == "width",
	}, nil
}

func (in *ovalInstr) Exec(s *State) error {
	W, H := float64(s.W), float64(s.H)
	rx, ry := in.rw/100*W/2, in.rh/100*H/2
	if in.circle {
		d := in.rw / 100 * H
		if in.byWidth {
			d = in.rw / 100 * W
		}
		rx, ry = d/2, d/2
	}
	s.DC.DrawEllipse(in.cx/100*W, in.cy/100*H, rx, ry)
	s.DC.SetColor(in.color.resolve(s.Badge))
	if in.fill {
		s.DC.Fill()
	} else {
		s.DC.SetLineWidth(1)
		s.DC.Stroke()
	}
	return nil
}

func parseNumbers(toks []string) ([]float64, error) {
	out := make([]float64, len(toks))
	for i, t := range toks {
		v, err := parsePercent(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// =============================================================================
// Text
// =============================================================================

type textSource int

const (
	sourceLiteral textSource = iota
	sourcePrimary
	sourceSecondary
	sourceNumber
)

func fieldSource(name string) textSource {
	switch name {
	case "primarytext":
		return sourcePrimary
	case "secondarytext":
		return sourceSecondary
	}
	return sourceNumber
}

// Justify aligns text inside its box.
type Justify int

const (
	Center Justify = iota
	Left
	Right
)

type textInstr struct {
	source  textSource
	literal string
	color   colorRef
	font    string
	style   fonts.Style
	x, y    Position
	w, h    float64
	justify Justify
}

func parseText(src textSource, literal string, tok []string) (Instruction, error) {
	if len(tok) != 7 && len(tok) != 8 {
		return nil, fmt.Errorf("text takes <color> <font> <style> <x> <y> <w> <h> [justify], got %d arguments", len(tok))
	}
	in := &textInstr{
		source:  src,
		literal: literal,
		color:   parseColorRef(tok[0]),
		font:    tok[1],
		style:   fonts.ParseStyle(tok[2]),
	}
	var err error
	if in.x, err = ParsePosition(tok[3]); err != nil {
		return nil, err
	}
	if in.y, err = ParsePosition(tok[4]); err != nil {
		return nil, err
	}
	if in.w, err = parsePercent(tok[5]); err != nil {
		return nil, err
	}
	if in.h, err = parsePercent(tok[6]); err != nil {
		return nil, err
	}
	if len(tok) == 8 {
		switch tok[7] {
		case "left":
			in.justify = Left
		case "right":
			in.justify = Right
		case "center", "centered":
			in.justify = Center
		default:
			return nil, &SyntaxError{Token: tok[7], Want: "left, center or right"}
		}
	}
	return in, nil
}

func (in *textInstr) text(b *badge.Badge) string {
	switch in.source {
	case sourcePrimary:
		return b.Primary
	case sourceSecondary:
		return b.Secondary
	case sourceNumber:
		if !b.HasNumber() {
			return ""
		}
		return strconv.Itoa(b.Number)
	}
	return in.literal
}

func (in *textInstr) Exec(s *State) error {
	str := in.text(s.Badge)
	if str == "" {
		return nil
	}
	boxW := int(in.w / 100 * float64(s.W))
	boxH := int(in.h / 100 * float64(s.H))
	f := s.Env.Fonts.Font(in.font, in.style)
	img := raster.RasterizeText(f, s.RefSz, str, in.color.resolve(s.Badge), boxH, boxW, s.Env.Quality)
	if img == nil {
		return nil
	}
	tw, th := raster.Size(img)
	x := in.x.Resolve(s.W, boxW)
	y := in.y.Resolve(s.H, boxH)
	switch in.justify {
	case Left:
	case Right:
		x += boxW - tw
	default:
		x += (boxW - tw) / 2
	}
	raster.Blit(s.DC, img, x, y+(boxH-th)/2)
	return nil
}

// =============================================================================
// Images
// =============================================================================

// BackgroundToken names the badge's own background image in a blit.
const BackgroundToken = "bg"

type blitMode int

const (
	blitHeight blitMode = iota
	blitWidth
	blitBox
)

type blitInstr struct {
	path   string
	mode   blitMode
	w, h   float64
	x, y   Position
	alpha  float64
	hasAlp bool
}

func parseBlit(tok []string) (Instruction, error) {
	if len(tok) != 6 && len(tok) != 7 {
		return nil, arity(tok[0], "<path|bg> width|height|box <arg> <x> <y> [alpha]")
	}
	in := &blitInstr{path: tok[1]}
	var err error
	switch tok[2] {
	case "width":
		in.mode = blitWidth
		in.w, err = parsePercent(tok[3])
	case "box":
		in.mode = blitBox
		in.w, in.h, err = parsePair(tok[3])
	default:
		// Unknown scaling methods fall back to height.
		in.mode = blitHeight
		in.h, err = parsePercent(tok[3])
	}
	if err != nil {
		return nil, err
	}
	if in.x, err = ParsePosition(tok[4]); err != nil {
		return nil, err
	}
	if in.y, err = ParsePosition(tok[5]); err != nil {
		return nil, err
	}
	if len(tok) == 7 {
		a, err := strconv.Atoi(tok[6])
		if err != nil {
			return nil, &SyntaxError{Token: tok[6], Want: "an integer alpha percentage"}
		}
		in.alpha, in.hasAlp = float64(a), true
	}
	return in, nil
}

func (in *blitInstr) source(s *State) (image.Image, error) {
	if in.path == BackgroundToken {
		if s.Badge.Background != nil {
			return s.Badge.Background, nil
		}
		if s.Badge.BackgroundPath == "" {
			return nil, fmt.Errorf("badge has no background image")
		}
		return s.Env.Images.Get(s.Ctx, s.Badge.BackgroundPath)
	}
	return s.Env.Images.Get(s.Ctx, in.resolve(s.Dir))
}

// resolve returns the blit path, joined to dir when relative.
func (in *blitInstr) resolve(dir string) string {
	if filepath.IsAbs(in.path) {
		return in.path
	}
	return filepath.Join(dir, in.path)
}

func (in *blitInstr) Exec(s *State) error {
	img, err := in.source(s)
	if err != nil {
		return err
	}
	iw, ih := raster.Size(img)
	W, H := float64(s.W), float64(s.H)

	var w, h int
	switch in.mode {
	case blitWidth:
		w = int(in.w / 100 * W)
		h = raster.AspectHeight(iw, ih, w)
	case blitBox:
		w, h = raster.FitText(iw, ih, int(in.h/100*H), int(in.w/100*W))
	default:
		h = int(in.h / 100 * H)
		w = raster.AspectWidth(iw, ih, h)
	}

	scaled := raster.Scale(img, w, h, s.Env.Quality)
	if in.hasAlp {
		if err := raster.SetAlpha(scaled, in.alpha); err != nil {
			return err
		}
	}
	raster.Blit(s.DC, scaled, in.x.Resolve(s.W, w), in.y.Resolve(s.H, h))
	return nil
}
