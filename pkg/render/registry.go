package render

import (
	"sort"
	"sync"

	"github.com/osumercury/badgemaker/pkg/errors"
)

// Factory builds a renderer instance bound to env.
type Factory func(env Env) Renderer

// Registry maps renderer names to factories. Renderers are selected by name
// at run time; there is no dynamic loading.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New builds a fresh renderer. Each call returns an independent instance with
// default property values.
func (r *Registry) New(name string, env Env) (Renderer, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownRenderer, "unknown renderer %q (available: %v)", name, r.Names())
	}
	return f(env), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ApplyProperties sets every entry of props on r in key order and returns
// one error per rejected entry. Accepted entries are applied even when
// others fail.
func ApplyProperties(r Renderer, props map[string]string) []error {
	var errs []error
	for _, k := range SortedKeys(props) {
		if err := r.SetProperty(k, props[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
