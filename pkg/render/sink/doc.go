// Package sink provides output format renderers for resolved frames.
//
// # Overview
//
// A "sink" transforms a [render.Frame] into a final output format:
//
//   - SVG: vector output with optional hover interaction
//   - PNG: raster output drawn with gg, no external tools needed
//   - PDF: print-ready output (requires rsvg-convert)
//   - JSON: element rectangles and diagnostics for external tools
//   - Text: box-drawing characters for terminals
//
// Elements are drawn in frame order, so later elements paint over earlier
// ones. Elements without a fill color take one from a fixed palette keyed
// by draw index, which keeps output deterministic.
//
//	frame := render.Draw(ctx, resolver, canvas, nil)
//	svg := sink.RenderSVG(frame, sink.WithInteraction())
//	png, err := sink.RenderPNG(frame, sink.WithScale(2))
//
// [Grid] also implements [render.Surface], so a terminal frontend can paint
// straight from a draw pass without building a frame first.
//
// # Adding New Formats
//
// To add a new output format:
//
//  1. Create a renderer function: func RenderFoo(f render.Frame, opts ...FooOption) ([]byte, error)
//  2. Define option types for configuration
//  3. Register it in pkg/pipeline's format switch
//
// [render.Frame]: github.com/matzehuels/anchorlayout/pkg/render.Frame
// [render.Surface]: github.com/matzehuels/anchorlayout/pkg/render.Surface
package sink
