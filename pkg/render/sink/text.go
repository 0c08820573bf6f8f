package sink

import (
	"math"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// Default canvas units per terminal cell for text output.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

type borderChars struct {
	topLeft, top, topRight    rune
	left, right               rune
	bottomLeft, bottomRight   rune
	horizontal, vertical, dot rune
}

var singleBorder = borderChars{
	topLeft: '┌', top: '─', topRight: '┐',
	left: '│', right: '│',
	bottomLeft: '└', bottomRight: '┘',
	horizontal: '─', vertical: '│', dot: '■',
}

// Grid is a character-cell surface. Each painted element becomes a single
// line box; later elements overwrite earlier ones, interior included.
type Grid struct {
	cols, rows   int
	cellW, cellH float64
	cells        []rune
}

// NewGrid creates a grid of cols x rows cells covering canvas. When cols or
// rows is zero it is derived from the default cell size.
func NewGrid(canvas layout.Extent, cols, rows int) *Grid {
	if cols <= 0 {
		cols = max(1, canvas.Width/DefaultCellWidth)
	}
	if rows <= 0 {
		rows = max(1, canvas.Height/DefaultCellHeight)
	}
	g := &Grid{
		cols:  cols,
		rows:  rows,
		cellW: float64(max(1, canvas.Width)) / float64(cols),
		cellH: float64(max(1, canvas.Height)) / float64(rows),
		cells: make([]rune, cols*rows),
	}
	for i := range g.cells {
		g.cells[i] = ' '
	}
	return g
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// Paint draws el's box at r, scaled to cells.
func (g *Grid) Paint(el layout.Element, r layout.Rect) {
	if r.IsEmpty() {
		return
	}
	x0 := int(math.Floor(float64(r.X) / g.cellW))
	y0 := int(math.Floor(float64(r.Y) / g.cellH))
	x1 := max(x0, int(math.Ceil(float64(r.Right())/g.cellW))-1)
	y1 := max(y0, int(math.Ceil(float64(r.Bottom())/g.cellH))-1)

	// Only visit cells on the grid; glyphs still follow the unclipped box.
	cx0, cx1 := max(x0, 0), min(x1, g.cols-1)
	cy0, cy1 := max(y0, 0), min(y1, g.rows-1)
	if cx0 > cx1 || cy0 > cy1 {
		return
	}

	b := singleBorder
	for y := cy0; y <= cy1; y++ {
		for x := cx0; x <= cx1; x++ {
			var ch rune
			switch {
			case x0 == x1 && y0 == y1:
				ch = b.dot
			case y0 == y1:
				ch = b.horizontal
			case x0 == x1:
				ch = b.vertical
			case y == y0 && x == x0:
				ch = b.topLeft
			case y == y0 && x == x1:
				ch = b.topRight
			case y == y1 && x == x0:
				ch = b.bottomLeft
			case y == y1 && x == x1:
				ch = b.bottomRight
			case y == y0 || y == y1:
				ch = b.top
			case x == x0:
				ch = b.left
			case x == x1:
				ch = b.right
			default:
				ch = ' '
			}
			g.set(x, y, ch)
		}
	}

	label := []rune(render.LabelOf(el))
	inner := x1 - x0 - 1
	if len(label) == 0 || inner <= 0 || y1-y0 < 2 {
		return
	}
	if len(label) > inner {
		label = label[:inner]
	}
	ly := (y0 + y1) / 2
	lx := x0 + 1 + (inner-len(label))/2
	for i, ch := range label {
		g.set(lx+i, ly, ch)
	}
}

func (g *Grid) set(x, y int, ch rune) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y*g.cols+x] = ch
}

// String returns the grid as newline-terminated rows with trailing spaces
// trimmed.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.rows; y++ {
		row := string(g.cells[y*g.cols : (y+1)*g.cols])
		sb.WriteString(strings.TrimRight(row, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// TextOption configures text rendering.
type TextOption func(*textRenderer)

type textRenderer struct {
	cols, rows int
}

// WithCells sets the output size in cells.
func WithCells(cols, rows int) TextOption {
	return func(r *textRenderer) { r.cols, r.rows = cols, rows }
}

// RenderText draws the frame as box-drawing characters.
func RenderText(f render.Frame, opts ...TextOption) []byte {
	r := textRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	g := NewGrid(f.Canvas, r.cols, r.rows)
	f.Replay(g)
	return []byte(g.String())
}
