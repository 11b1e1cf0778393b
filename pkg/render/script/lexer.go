package script

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern matches a bare word or a double-quoted run, plus trailing
// whitespace.
var tokenPattern = regexp.MustCompile(`([^"]\S*|".+?")\s*`)

// Tokenize splits line on whitespace, keeping double-quoted substrings
// together. Quotes are removed from the tokens.
func Tokenize(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	matches := tokenPattern.FindAllStringSubmatch(line, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, strings.ReplaceAll(m[1], `"`, ""))
	}
	return tokens
}

// Position is a horizontal or vertical placement token: a keyword or a
// percentage of the badge dimension.
type Position struct {
	Keyword string
	Percent float64
}

// ParsePosition reads "left", "top", "right", "bottom", "centered" or a
// percentage.
func ParsePosition(tok string) (Position, error) {
	switch tok {
	case "left", "top", "right", "bottom", "centered":
		return Position{Keyword: tok}, nil
	}
	v, err := parsePercent(tok)
	if err != nil {
		return Position{}, err
	}
	return Position{Percent: v}, nil
}

// Resolve returns the pixel offset of an item of size dim inside bounds.
func (p Position) Resolve(bounds, dim int) int {
	switch p.Keyword {
	case "left", "top":
		return 0
	case "right", "bottom":
		return bounds - dim
	case "centered":
		return (bounds - dim) / 2
	}
	return int(p.Percent / 100 * float64(bounds))
}

func parsePercent(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &SyntaxError{Token: tok, Want: "a number"}
	}
	return v, nil
}

// parsePair reads "x,y".
func parsePair(tok string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(tok, ",")
	if !ok {
		return 0, 0, &SyntaxError{Token: tok, Want: "an x,y pair"}
	}
	x, err := parsePercent(xs)
	if err != nil {
		return 0, 0, err
	}
	y, err := parsePercent(ys)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// SyntaxError reports a token of the wrong shape.
type SyntaxError struct {
	Token string
	Want  string
}

func (e *SyntaxError) Error() string {
	return "expected " + e.Want + ", got " + strconv.Quote(e.Token)
}
