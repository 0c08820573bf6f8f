// Package refgraph draws the anchor reference graph of a scene.
//
// Every element is a node and every anchor that targets another element is
// an edge from the referencing element to its target. Anchors sharing a
// source and target collapse into one edge labelled with their roles.
//
// [Build] also runs a depth-first search over the graph and records each
// reference cycle it closes, which is the static counterpart of the cycle
// diagnostics a layout pass reports:
//
//	g := refgraph.Build(reg)
//	for _, c := range g.Cycles {
//	    fmt.Println(strings.Join(c, " -> "))
//	}
//	svg, err := refgraph.RenderSVG(ctx, refgraph.ToDOT(g, refgraph.Options{Roles: true}))
package refgraph
