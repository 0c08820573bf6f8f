package refgraph

import (
	"strconv"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// Node is one vertex of the reference graph.
type Node struct {
	// Key is unique within the graph: the element id, "id#index" for an
	// entry shadowed by a later one with the same id, or "#index" for an
	// unaddressable element. A missing target keeps its id as key unless
	// that collides with an element key, in which case it gains "?" prefixes.
	Key   string
	Label string
	// Missing marks an id that anchors target but no element defines.
	Missing bool
	// InCycle marks nodes that take part in a reference cycle.
	InCycle bool
}

// Edge points from an element to the element its anchors target.
type Edge struct {
	From, To string
	Roles    []layout.Role
	// Back marks the edge that closes a cycle during depth-first search.
	Back bool
}

// Graph is the anchor reference graph of a registry.
type Graph struct {
	Nodes  []Node
	Edges  []Edge
	Cycles [][]string
}

// Build derives the reference graph of reg. Canvas references have no
// edge. Shadowed ids resolve to the entry a layout pass would use.
func Build(reg *layout.Registry) *Graph {
	g := &Graph{}
	entries := reg.Entries()
	keys := make(map[*layout.Entry]string, len(entries))
	index := make(map[string]int)

	for _, e := range entries {
		key := nodeKey(reg, e)
		keys[e] = key
		index[key] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{Key: key, Label: render.LabelOf(e.Element)})
	}

	elements := make(map[string]bool, len(index))
	for key := range index {
		elements[key] = true
	}

	edgeAt := make(map[[2]string]int)
	for _, e := range entries {
		from := keys[e]
		for _, ref := range e.Constraints.References() {
			var to string
			if t, ok := reg.Lookup(ref.Target); ok {
				to = keys[t]
			} else {
				to = missingKey(ref.Target, elements)
				if _, seen := index[to]; !seen {
					index[to] = len(g.Nodes)
					g.Nodes = append(g.Nodes, Node{Key: to, Label: ref.Target, Missing: true})
				}
			}
			k := [2]string{from, to}
			if i, ok := edgeAt[k]; ok {
				g.Edges[i].Roles = append(g.Edges[i].Roles, ref.Role)
				continue
			}
			edgeAt[k] = len(g.Edges)
			g.Edges = append(g.Edges, Edge{From: from, To: to, Roles: []layout.Role{ref.Role}})
		}
	}

	g.findCycles(index)
	return g
}

func missingKey(target string, elements map[string]bool) string {
	key := target
	for elements[key] {
		key = "?" + key
	}
	return key
}

func nodeKey(reg *layout.Registry, e *layout.Entry) string {
	id := e.ID()
	if id == "" {
		return "#" + strconv.Itoa(e.Index())
	}
	if t, _ := reg.Lookup(id); t != e {
		return id + "#" + strconv.Itoa(e.Index())
	}
	return id
}

// findCycles runs a depth-first search in node order, marking back edges
// and the nodes on each cycle they close.
func (g *Graph) findCycles(index map[string]int) {
	const (
		white = iota
		gray
		black
	)

	out := make(map[string][]int)
	for i, e := range g.Edges {
		out[e.From] = append(out[e.From], i)
	}

	color := make(map[string]int)
	var stack []string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		stack = append(stack, node)
		for _, ei := range out[node] {
			child := g.Edges[ei].To
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				g.Edges[ei].Back = true
				start := len(stack) - 1
				for stack[start] != child {
					start--
				}
				cycle := append([]string(nil), stack[start:]...)
				g.Cycles = append(g.Cycles, cycle)
				for _, k := range cycle {
					g.Nodes[index[k]].InCycle = true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, n := range g.Nodes {
		if color[n.Key] == white {
			dfs(n.Key)
		}
	}
}

// CycleMembers returns the keys of every node on a cycle, in node order.
func (g *Graph) CycleMembers() []string {
	var out []string
	for _, n := range g.Nodes {
		if n.InCycle {
			out = append(out, n.Key)
		}
	}
	return out
}

func rolesLabel(roles []layout.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
