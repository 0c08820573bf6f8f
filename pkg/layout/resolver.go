package layout

import "fmt"

// DefaultMaxDepth bounds the length of a target-resolution chain.
const DefaultMaxDepth = 64

// Option configures a Resolver.
type Option func(*Resolver)

// WithProjector replaces the DefaultProjector.
func WithProjector(p Projector) Option {
	return func(r *Resolver) {
		if p != nil {
			r.projector = p
		}
	}
}

// WithSink sets the diagnostic sink. The default discards diagnostics.
func WithSink(s Sink) Option {
	return func(r *Resolver) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithMaxDepth sets the reference chain ceiling. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// Resolver computes element rectangles from a registry. It holds no
// per-pass state: every draw pass gets its own Pass from NewPass, so one
// Resolver can serve several canvases concurrently provided the registry
// is not mutated meanwhile.
type Resolver struct {
	registry  *Registry
	projector Projector
	sink      Sink
	maxDepth  int
}

// NewResolver creates a resolver over reg.
func NewResolver(reg *Registry, opts ...Option) *Resolver {
	if reg == nil {
		reg = NewRegistry()
	}
	r := &Resolver{
		registry:  reg,
		projector: DefaultProjector{},
		sink:      NopSink{},
		maxDepth:  DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the registry the resolver reads from.
func (r *Resolver) Registry() *Registry { return r.registry }

// MaxDepth returns the configured reference chain ceiling.
func (r *Resolver) MaxDepth() int { return r.maxDepth }

// NewPass starts a draw pass against canvas.
func (r *Resolver) NewPass(canvas Extent) *Pass {
	return &Pass{
		resolver: r,
		canvas:   canvas,
		cache:    make(map[*Entry]Rect, r.registry.Len()),
		active:   make(map[*Entry]bool),
	}
}

// Resolve runs one complete pass and returns every rectangle in
// registration order.
func (r *Resolver) Resolve(canvas Extent) []Rect {
	p := r.NewPass(canvas)
	entries := r.registry.Entries()
	out := make([]Rect, len(entries))
	for i, e := range entries {
		out[i] = p.Region(e)
	}
	return out
}

// Pass is the disposable state of one draw pass: the memo of resolved
// rectangles and the set of entries currently being resolved.
// A Pass must be used from a single goroutine.
type Pass struct {
	resolver *Resolver
	canvas   Extent

	cache  map[*Entry]Rect
	active map[*Entry]bool
	chain  []*Entry
}

// Canvas returns the extent this pass resolves against.
func (p *Pass) Canvas() Extent { return p.canvas }

// Cached returns the memoized rectangle for e, if it was resolved in this pass.
func (p *Pass) Cached(e *Entry) (Rect, bool) {
	r, ok := p.cache[e]
	return r, ok
}

// Reset drops all pass state so the pass can be reused for another frame.
func (p *Pass) Reset() {
	clear(p.cache)
	clear(p.active)
	p.chain = p.chain[:0]
}

// Region returns the rectangle of e. The first call in a pass computes it,
// resolving referenced elements on demand; later calls return the same value
// without touching the projector.
func (p *Pass) Region(e *Entry) Rect {
	if r, ok := p.cache[e]; ok {
		return r
	}

	p.active[e] = true
	p.chain = append(p.chain, e)
	defer func() {
		delete(p.active, e)
		p.chain = p.chain[:len(p.chain)-1]
	}()

	c := e.Constraints
	x, width := p.horizontal(e, c)
	y, height := p.vertical(e, c)

	r := Rect{X: x, Y: y, Width: width, Height: height}
	p.cache[e] = r
	return r
}

func (p *Pass) horizontal(e *Entry, c Constraints) (left, width int) {
	proj := p.resolver.projector
	left = 0
	right := p.canvas.Width
	center := p.canvas.Width / 2

	if a := c.CenterX; a != nil {
		t := p.target(e, RoleCenterX, a.Target)
		center = proj.ProjectX(t, a.Align.Or(AlignCenter)) + a.Offset
	}
	if a := c.Left; a != nil {
		t := p.target(e, RoleLeft, a.Target)
		left = proj.ProjectX(t, a.Align.Or(AlignLeft)) + a.Offset
	}
	if a := c.Right; a != nil {
		t := p.target(e, RoleRight, a.Target)
		right = proj.ProjectX(t, a.Align.Or(AlignRight)) - a.Offset
	}

	width = c.Width
	switch {
	case width == 0:
		width = right - left
	case c.CenterX != nil:
		left = center - width/2
	case c.Right != nil:
		left = right - width
	}
	return left, width
}

func (p *Pass) vertical(e *Entry, c Constraints) (top, height int) {
	proj := p.resolver.projector
	top = 0
	bottom := p.canvas.Height
	center := p.canvas.Height / 2

	if a := c.CenterY; a != nil {
		t := p.target(e, RoleCenterY, a.Target)
		center = proj.ProjectY(t, a.Align.Or(AlignMiddle)) + a.Offset
	}
	if a := c.Top; a != nil {
		t := p.target(e, RoleTop, a.Target)
		top = proj.ProjectY(t, a.Align.Or(AlignTop)) + a.Offset
	}
	if a := c.Bottom; a != nil {
		t := p.target(e, RoleBottom, a.Target)
		bottom = proj.ProjectY(t, a.Align.Or(AlignBottom)) - a.Offset
	}

	height = c.Height
	switch {
	case height == 0:
		height = bottom - top
	case c.CenterY != nil:
		top = center - height/2
	case c.Bottom != nil:
		top = bottom - height
	}
	return top, height
}

// target resolves the rectangle an anchor of from points at. Every failure
// mode falls back to the canvas and is reported to the sink.
func (p *Pass) target(from *Entry, role Role, id string) Rect {
	if id == "" {
		return p.canvas.Region()
	}

	t, ok := p.resolver.registry.Lookup(id)
	if !ok {
		p.report(KindUnresolved, from, role, id)
		return p.canvas.Region()
	}
	if r, ok := p.cache[t]; ok {
		return r
	}
	if p.active[t] {
		p.report(KindCycle, from, role, id)
		return p.canvas.Region()
	}
	if len(p.chain) >= p.resolver.maxDepth {
		p.report(KindDepthExceeded, from, role, id)
		return p.canvas.Region()
	}
	return p.Region(t)
}

func (p *Pass) report(kind Kind, from *Entry, role Role, target string) {
	chain := make([]string, len(p.chain))
	for i, e := range p.chain {
		chain[i] = entryName(e)
	}
	p.resolver.sink.Report(Diagnostic{
		Kind:    kind,
		Element: entryName(from),
		Target:  target,
		Role:    role,
		Chain:   chain,
	})
}

// entryName returns the id of e, or "#<index>" for unaddressable entries.
func entryName(e *Entry) string {
	if id := e.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("#%d", e.index)
}
