// Package render drives draw passes and hands the resolved geometry to
// output sinks.
//
// # Overview
//
// [Draw] is the host side of the layout contract: it opens one
// [layout.Pass] for a canvas, resolves and paints every registered element
// in registration order onto a [Surface], and drops the pass. It also
// returns a [Frame], the ordered list of placements that serialising sinks
// consume.
//
//	frame := render.Draw(ctx, resolver, layout.Extent{Width: 800, Height: 600}, nil)
//	svg := sink.RenderSVG(frame)
//
// Elements may implement [Labeler] and [Filler] to carry display text and a
// fill color into the frame.
//
// # Format Conversion
//
// [ToPDF] converts SVG to PDF with the external rsvg-convert tool (from
// librsvg).
//
// # Subpackages
//
//   - [sink]: SVG, PNG, PDF, JSON and terminal text output
//   - [refgraph]: the anchor reference graph as DOT or Graphviz SVG
//
// [sink]: github.com/matzehuels/anchorlayout/pkg/render/sink
// [refgraph]: github.com/matzehuels/anchorlayout/pkg/render/refgraph
package render
