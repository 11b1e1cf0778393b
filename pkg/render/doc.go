// Package render defines the renderer abstraction shared by every badge
// layout.
//
// # Overview
//
// A [Renderer] turns one [badge.Badge] into one raster image. Each renderer
// owns a typed property table that callers configure before a batch:
//
//	r, err := builtin.Registry().New("classic", env)
//	if err := r.SetProperty("primary-height", "0.18"); err != nil {
//	    logger.Warn("property rejected", "err", err)
//	}
//	img := r.Render(ctx, b)
//
// Rendering is a pure function of the badge and the property values. A
// renderer never caches rasters itself; the [Cached] wrapper layers a
// fingerprint → raster map on top when callers want reuse.
//
// # Properties
//
// Properties are declared once with a [Kind] and a default. Values are
// parsed into the tagged [Value] union when they are set, so a malformed
// number is rejected at the boundary and the previous value stays in place.
//
// # Dependencies
//
// Renderers receive their collaborators through [Env]: the shared decoded
// image cache, the font library and the logger. There is no package-level
// state, which lets tests substitute an isolated image cache.
//
// # Implementations
//
//   - [classic]: banner badge with trapezoid text bands
//   - [certificate]: vertically stacked certificate
//   - [script]: line-oriented drawing script
//
// [classic]: github.com/osumercury/badgemaker/pkg/render/classic
// [certificate]: github.com/osumercury/badgemaker/pkg/render/certificate
// [script]: github.com/osumercury/badgemaker/pkg/render/script
package render
