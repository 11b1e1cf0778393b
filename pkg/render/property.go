package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/osumercury/badgemaker/pkg/errors"
)

// Kind is the declared type of a property.
type Kind int

const (
	Integer Kind = iota
	Float
	String
)

// String returns the upper-case kind name shown in property tables.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	default:
		return "STRING"
	}
}

// Property declares one configurable renderer setting.
type Property struct {
	Key         string
	Kind        Kind
	Default     string
	Description string
}

// Value is a parsed property value. The zero Value is an empty string.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// IntValue wraps an integer.
func IntValue(v int64) Value { return Value{kind: Integer, i: v} }

// FloatValue wraps a float.
func FloatValue(v float64) Value { return Value{kind: Float, f: v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{kind: String, s: v} }

// ParseValue parses raw according to kind. Surrounding whitespace is ignored
// for numbers but kept for strings.
func ParseValue(kind Kind, raw string) (Value, error) {
	switch kind {
	case Integer:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not an integer", raw)
		}
		return IntValue(v), nil
	case Float:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Value{}, fmt.Errorf("%q is not a number", raw)
		}
		return FloatValue(v), nil
	default:
		return StringValue(raw), nil
	}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Int returns the value as an integer. Floats are truncated and strings
// yield 0.
func (v Value) Int() int64 {
	switch v.kind {
	case Integer:
		return v.i
	case Float:
		return int64(v.f)
	}
	return 0
}

// Float returns the value as a float. Strings yield 0.
func (v Value) Float() float64 {
	switch v.kind {
	case Integer:
		return float64(v.i)
	case Float:
		return v.f
	}
	return 0
}

// String returns the canonical text form, which ParseValue accepts.
func (v Value) String() string {
	switch v.kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return v.s
}

// Bool interprets a string value as a flag: "yes", "true", "on" and "1"
// (any case) are true.
func (v Value) Bool() bool {
	switch strings.ToLower(strings.TrimSpace(v.String())) {
	case "yes", "true", "on", "1", "y":
		return true
	}
	return false
}

// =============================================================================
// Property table
// =============================================================================

// Properties is an ordered property schema plus the current values.
//
// Properties is safe for concurrent use, so renders running on several
// goroutines can read values while nothing writes them.
type Properties struct {
	mu     sync.RWMutex
	schema []Property
	index  map[string]int
	values map[string]Value
}

// NewProperties declares props in order.
func NewProperties(props ...Property) *Properties {
	p := &Properties{
		index:  make(map[string]int),
		values: make(map[string]Value),
	}
	for _, prop := range props {
		p.Declare(prop)
	}
	return p
}

// Declare adds prop to the schema, or replaces the declaration with the same
// key. The value resets to the default. A default that does not parse is a
// programming error and panics.
func (p *Properties) Declare(prop Property) {
	v, err := ParseValue(prop.Kind, prop.Default)
	if err != nil {
		panic(fmt.Sprintf("render: property %s: bad default: %v", prop.Key, err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if i, ok := p.index[prop.Key]; ok {
		p.schema[i] = prop
	} else {
		p.index[prop.Key] = len(p.schema)
		p.schema = append(p.schema, prop)
	}
	p.values[prop.Key] = v
}

// List returns the declarations in declaration order.
func (p *Properties) List() []Property {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Property, len(p.schema))
	copy(out, p.schema)
	return out
}

// Lookup returns the declaration for key.
func (p *Properties) Lookup(key string) (Property, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i, ok := p.index[key]
	if !ok {
		return Property{}, false
	}
	return p.schema[i], true
}

// Get returns the current value of key.
func (p *Properties) Get(key string) (Value, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Set parses raw with the declared kind and stores it. An unknown key fails
// with ErrCodeUnknownProperty; a value that does not parse fails with
// ErrCodeInvalidProperty and leaves the previous value in place.
func (p *Properties) Set(key, raw string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i, ok := p.index[key]
	if !ok {
		return errors.New(errors.ErrCodeUnknownProperty, "unknown property %q", key)
	}
	v, err := ParseValue(p.schema[i].Kind, raw)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProperty, err, "property %s", key)
	}
	p.values[key] = v
	return nil
}

// Int returns the integer value of key, or 0 if undeclared.
func (p *Properties) Int(key string) int {
	v, _ := p.Get(key)
	return int(v.Int())
}

// Float returns the float value of key, or 0 if undeclared.
func (p *Properties) Float(key string) float64 {
	v, _ := p.Get(key)
	return v.Float()
}

// String returns the text of key, or "" if undeclared.
func (p *Properties) String(key string) string {
	v, _ := p.Get(key)
	return v.String()
}

// Bool returns the flag value of key.
func (p *Properties) Bool(key string) bool {
	v, _ := p.Get(key)
	return v.Bool()
}

// Snapshot returns every current value in canonical text form.
func (p *Properties) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v.String()
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
