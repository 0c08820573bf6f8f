package layout

import "fmt"

// Rect is an integer rectangle. X and Y are the top-left corner.
// Right and Bottom are exclusive edges.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRect creates a Rect from its top-left corner and size.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x-coordinate of the right edge (exclusive).
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y-coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int { return r.Y + r.Height }

// CenterX returns the horizontal center, truncated toward zero.
func (r Rect) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the vertical center, truncated toward zero.
func (r Rect) CenterY() int { return r.Y + r.Height/2 }

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// String formats the rectangle as "(x,y wxh)".
func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Extent is the size of a canvas for one draw pass.
type Extent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Region returns the full canvas rectangle anchored at the origin.
func (e Extent) Region() Rect {
	return Rect{Width: e.Width, Height: e.Height}
}
