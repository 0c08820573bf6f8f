package render

import (
	"context"
	"time"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/observability"
)

// Surface receives each element of a draw pass together with its resolved
// rectangle, in registration order.
type Surface interface {
	Paint(el layout.Element, r layout.Rect)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(el layout.Element, r layout.Rect)

// Paint calls f(el, r).
func (f SurfaceFunc) Paint(el layout.Element, r layout.Rect) { f(el, r) }

// Labeler is implemented by elements that carry display text.
type Labeler interface {
	Label() string
}

// Filler is implemented by elements that carry a fill color.
type Filler interface {
	Fill() string
}

// Placement is one painted element of a frame.
type Placement struct {
	Index int         `json:"index"`
	ID    string      `json:"id,omitempty"`
	Label string      `json:"label,omitempty"`
	Fill  string      `json:"fill,omitempty"`
	Rect  layout.Rect `json:"rect"`
}

// Frame is the result of one draw pass: the canvas and every placement in
// draw order.
type Frame struct {
	Canvas     layout.Extent `json:"canvas"`
	Placements []Placement   `json:"placements"`
}

// Lookup returns the placement for id.
func (f Frame) Lookup(id string) (Placement, bool) {
	if id == "" {
		return Placement{}, false
	}
	// Later placements shadow earlier ones, matching registry lookups.
	for i := len(f.Placements) - 1; i >= 0; i-- {
		if f.Placements[i].ID == id {
			return f.Placements[i], true
		}
	}
	return Placement{}, false
}

// Replay paints the frame's placements onto s without resolving again.
// The painted elements report the placement's id, label and fill.
func (f Frame) Replay(s Surface) {
	for _, p := range f.Placements {
		s.Paint(replayed{p}, p.Rect)
	}
}

type replayed struct{ p Placement }

func (r replayed) ID() string    { return r.p.ID }
func (r replayed) Label() string { return r.p.Label }
func (r replayed) Fill() string  { return r.p.Fill }

// Draw runs one draw pass of res against canvas. Every registered element is
// resolved and painted onto s in registration order; s may be nil when only
// the returned frame is needed. The pass is discarded before Draw returns.
func Draw(ctx context.Context, res *layout.Resolver, canvas layout.Extent, s Surface) Frame {
	reg := res.Registry()
	hooks := observability.Pass()
	hooks.OnPassStart(ctx, canvas.Width, canvas.Height, reg.Len())
	start := time.Now()

	pass := res.NewPass(canvas)
	entries := reg.Entries()
	frame := Frame{Canvas: canvas, Placements: make([]Placement, 0, len(entries))}
	for _, e := range entries {
		r := pass.Region(e)
		if s != nil {
			s.Paint(e.Element, r)
		}
		frame.Placements = append(frame.Placements, Placement{
			Index: e.Index(),
			ID:    e.ID(),
			Label: LabelOf(e.Element),
			Fill:  FillOf(e.Element),
			Rect:  r,
		})
	}

	hooks.OnPassComplete(ctx, len(frame.Placements), time.Since(start))
	return frame
}

// LabelOf returns el's label, or its id when it has none.
func LabelOf(el layout.Element) string {
	if l, ok := el.(Labeler); ok {
		if s := l.Label(); s != "" {
			return s
		}
	}
	if el == nil {
		return ""
	}
	return el.ID()
}

// FillOf returns el's fill color, or "".
func FillOf(el layout.Element) string {
	if f, ok := el.(Filler); ok {
		return f.Fill()
	}
	return ""
}
