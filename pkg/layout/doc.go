// Package layout resolves anchor constraints into element rectangles.
//
// Each element registered in a [Registry] carries a [Constraints] value: up to
// three horizontal anchors (center, left, right), up to three vertical anchors
// (center, top, bottom) and an optional explicit width and height. An anchor
// either refers to the canvas (empty target) or to another registered
// element's resolved rectangle, projected to one coordinate through an
// alignment and shifted by an offset.
//
// # Passes
//
// Resolution happens once per draw pass. [Resolver.NewPass] returns a [Pass]
// that memoizes every rectangle it computes, so an element resolved as the
// target of another anchor is not recomputed when it is drawn. The pass is
// discarded when the frame is done; nothing carries over between canvases.
//
//	reg := layout.NewRegistry()
//	reg.Add(header, layout.Constraints{}.WithTop("", 0, 10).WithHeight(60))
//	reg.Add(body, layout.Constraints{}.WithTop("header", layout.AlignBottom, 8))
//
//	res := layout.NewResolver(reg, layout.WithSink(layout.LogSink{Logger: logger}))
//	pass := res.NewPass(layout.Extent{Width: 800, Height: 600})
//	for _, e := range reg.Entries() {
//	    surface.Paint(e.Element, pass.Region(e))
//	}
//
// # Size precedence
//
// With an explicit width, the left edge comes from the center anchor if
// present, otherwise from the right anchor, otherwise from the left anchor
// (or 0). Without one, width is right minus left. The vertical axis mirrors
// this. Centers use Go integer division, which truncates toward zero.
//
// # Failure modes
//
// Resolution never fails. A reference to an unknown id, a reference cycle of
// any length, or a chain deeper than the resolver's MaxDepth resolves that one
// reference against the full canvas and reports a [Diagnostic] to the
// configured [Sink].
package layout
