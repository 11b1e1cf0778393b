// Package pkg provides the core libraries for badgemaker.
//
// # Overview
//
// Badgemaker turns a roster of teams or people into printable name badges and
// certificates. The pkg directory is organized into four areas:
//
//  1. Domain: [badge], [render] and its renderers, [layout]
//  2. Drawing support: [raster], [fonts]
//  3. Infrastructure: [cache], [sink], [source], [io], [observability]
//  4. Orchestration: [pipeline]
//
// # Architecture
//
// The typical data flow:
//
//	Roster (CSV / TOML / JSON / MongoDB)
//	         ↓
//	    [io] and [source] packages (records → badges)
//	         ↓
//	    [render] package (renderer + properties → raster per badge)
//	         ↓
//	    [layout] package (pack rasters onto pages)
//	         ↓
//	    [sink] package (PNG/JPEG files, PDF)
//
// # Quick Start
//
// Render a roster into a PDF:
//
//	import (
//	    "context"
//	    "github.com/osumercury/badgemaker/pkg/io"
//	    "github.com/osumercury/badgemaker/pkg/pipeline"
//	    "github.com/osumercury/badgemaker/pkg/render/builtin"
//	    "github.com/osumercury/badgemaker/pkg/sink"
//	)
//
//	ctx := context.Background()
//	badges, _, _ := io.Import(ctx, "teams.csv", io.ReadOptions{})
//
//	opts := pipeline.Options{Renderer: "classic", PDFPath: "badges.pdf"}
//	_ = opts.ValidateForExport()
//	spec, units, _ := opts.PageSpec()
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	rend, _ := runner.Prepare(builtin.Registry(), opts)
//	res, err := runner.ExportDocument(ctx, rend, badges, sink.NewPDF(opts.PDFPath), spec, units, pipeline.NewProgress())
//
// # Main Packages
//
//   - [badge]: the printable unit and its physical size
//   - [render]: renderer interface, typed properties, registry, raster cache
//   - [render/classic], [render/certificate], [render/script]: built-in renderers
//   - [layout]: page presets, units and the shelf packer
//   - [raster]: colors, text rasterization, scaling, decoded-image cache
//   - [fonts]: font lookup with bundled fallbacks
//   - [io]: CSV, TOML and JSON rosters and renderer settings
//   - [source]: roster sources (local files, MongoDB)
//   - [sink]: image directory and PDF document outputs
//   - [cache]: file, Redis and null byte caches
//   - [pipeline]: batch options, runner, jobs and progress
//   - [observability]: hooks for batch and HTTP metrics
//   - [errors]: coded errors shared by every package
//
// [badge]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/badge
// [render]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/render
// [render/classic]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/render/classic
// [render/certificate]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/render/certificate
// [render/script]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/render/script
// [layout]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/layout
// [raster]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/raster
// [fonts]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/fonts
// [io]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/io
// [source]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/source
// [sink]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/sink
// [cache]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/observability
// [errors]: https://pkg.go.dev/github.com/osumercury/badgemaker/pkg/errors
package pkg
