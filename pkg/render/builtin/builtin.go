// Package builtin registers the renderers shipped with badgemaker.
package builtin

import (
	"github.com/osumercury/badgemaker/pkg/render"
	"github.com/osumercury/badgemaker/pkg/render/certificate"
	"github.com/osumercury/badgemaker/pkg/render/classic"
	"github.com/osumercury/badgemaker/pkg/render/script"
)

// DefaultRenderer is used when no renderer is named.
const DefaultRenderer = classic.Name

// Registry returns a new registry holding the classic, certificate and
// script renderers.
func Registry() *render.Registry {
	r := render.NewRegistry()
	r.Register(classic.Name, classic.New)
	r.Register(certificate.Name, certificate.New)
	r.Register(script.Name, script.New)
	return r
}
