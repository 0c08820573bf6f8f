// Package pkg provides the core libraries for anchorlayout.
//
// # Overview
//
// Anchorlayout places rectangular elements on a canvas. Each element pins up
// to one horizontal and one vertical anchor per role (centre, leading and
// trailing edge) to the canvas or to another element, with an alignment and
// a pixel offset. The pkg directory is organized into these areas:
//
//  1. [layout] - Registry, constraints and the per-pass resolver
//  2. [scene] - TOML, YAML and JSON scene documents
//  3. [render] - Draw driver, output sinks and the reference graph
//  4. [pipeline] - Orchestration (load → layout → render) with caching
//  5. [cache] - File, Redis and null caches keyed by document hash
//
// # Architecture
//
// The typical data flow:
//
//	Scene document (TOML/YAML/JSON)
//	         ↓
//	    [scene] package (decode, validate, build registry)
//	         ↓
//	    [layout] package (one pass per canvas, diagnostics to a sink)
//	         ↓
//	    [render] package (frame of placements)
//	         ↓
//	    SVG/PNG/PDF/JSON/text output
//
// # Quick Start
//
// Resolve a scene and render it to SVG:
//
//	doc, _, err := scene.Import("dashboard.toml")
//	reg, err := doc.Build()
//
//	var diags layout.Collector
//	res := layout.NewResolver(reg, layout.WithSink(&diags))
//	frame := render.Draw(ctx, res, doc.Canvas.Extent(), nil)
//
//	svg := sink.RenderSVG(frame)
//
// # Main Packages
//
// [layout] - Integer rectangles, alignment projection and the resolver. A
// [layout.Resolver] is immutable configuration; every pass owns its cache
// and in-progress set, so passes may run concurrently over one registry.
// Reference cycles, unknown targets and over-deep chains resolve against the
// canvas and are reported as diagnostics.
//
// [scene] - Document decoding and validation. Duplicate or malformed ids,
// negative sizes and unknown alignment names are load errors; references to
// unknown ids are not.
//
// [render] - [render.Draw] paints elements in registration order and
// returns a frame. Subpackages hold the sinks (SVG, PNG, PDF, JSON, text)
// and the Graphviz reference graph.
//
// [pipeline] - Complete pipeline used by the CLI and the HTTP service.
// Ensures canvas defaults, strict mode and caching behave the same
// everywhere.
//
// [cache] - Layout and artifact caching with TTLs and scoped keys.
//
// [errors] - Coded errors shared by every layer.
//
// [observability] - Global hooks for passes, pipeline stages, cache and
// HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example ./pkg/layout    # Examples only
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/layout
// [scene]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/scene
// [render]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/anchorlayout/pkg/observability
package pkg
