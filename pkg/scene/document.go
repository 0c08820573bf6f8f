package scene

import (
	"strconv"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Document is a decoded scene: a canvas size and elements in draw order.
type Document struct {
	Canvas   Canvas    `toml:"canvas" yaml:"canvas" json:"canvas"`
	Elements []Element `toml:"element" yaml:"element" json:"element"`
}

// Canvas is the default drawing area. Zero dimensions defer to the caller.
type Canvas struct {
	Width  int `toml:"width,omitempty" yaml:"width,omitempty" json:"width,omitempty"`
	Height int `toml:"height,omitempty" yaml:"height,omitempty" json:"height,omitempty"`
}

// Extent returns the canvas as a layout extent.
func (c Canvas) Extent() layout.Extent {
	return layout.Extent{Width: c.Width, Height: c.Height}
}

// Element is one [[element]] table of a scene document.
type Element struct {
	ID     string `toml:"id,omitempty" yaml:"id,omitempty" json:"id,omitempty"`
	Label  string `toml:"label,omitempty" yaml:"label,omitempty" json:"label,omitempty"`
	Fill   string `toml:"fill,omitempty" yaml:"fill,omitempty" json:"fill,omitempty"`
	Width  int    `toml:"width,omitempty" yaml:"width,omitempty" json:"width,omitempty"`
	Height int    `toml:"height,omitempty" yaml:"height,omitempty" json:"height,omitempty"`

	CenterX *Anchor `toml:"center_x,omitempty" yaml:"center_x,omitempty" json:"center_x,omitempty"`
	Left    *Anchor `toml:"left,omitempty" yaml:"left,omitempty" json:"left,omitempty"`
	Right   *Anchor `toml:"right,omitempty" yaml:"right,omitempty" json:"right,omitempty"`
	CenterY *Anchor `toml:"center_y,omitempty" yaml:"center_y,omitempty" json:"center_y,omitempty"`
	Top     *Anchor `toml:"top,omitempty" yaml:"top,omitempty" json:"top,omitempty"`
	Bottom  *Anchor `toml:"bottom,omitempty" yaml:"bottom,omitempty" json:"bottom,omitempty"`
}

// Anchor is the document form of one anchor. An empty Target means the
// canvas and an empty Align means the role's default.
type Anchor struct {
	Target string `toml:"target,omitempty" yaml:"target,omitempty" json:"target,omitempty"`
	Align  string `toml:"align,omitempty" yaml:"align,omitempty" json:"align,omitempty"`
	Offset int    `toml:"offset,omitempty" yaml:"offset,omitempty" json:"offset,omitempty"`
}

// anchors returns the element's anchors keyed by role, skipping absent ones.
func (e Element) anchors() []roleAnchor {
	all := []roleAnchor{
		{layout.RoleCenterX, e.CenterX},
		{layout.RoleLeft, e.Left},
		{layout.RoleRight, e.Right},
		{layout.RoleCenterY, e.CenterY},
		{layout.RoleTop, e.Top},
		{layout.RoleBottom, e.Bottom},
	}
	out := all[:0]
	for _, ra := range all {
		if ra.anchor != nil {
			out = append(out, ra)
		}
	}
	return out
}

type roleAnchor struct {
	role   layout.Role
	anchor *Anchor
}

// name returns the id, or "#<index>" when the element is unaddressable.
func (e Element) name(index int) string {
	if e.ID != "" {
		return e.ID
	}
	return "#" + strconv.Itoa(index)
}

// Box is the layout element built from a document element. It carries the
// presentation attributes sinks draw with.
type Box struct {
	id    string
	label string
	fill  string
}

// NewBox creates a Box.
func NewBox(id, label, fill string) *Box {
	return &Box{id: id, label: label, fill: fill}
}

func (b *Box) ID() string { return b.id }

// Label returns the display text, falling back to the id.
func (b *Box) Label() string {
	if b.label != "" {
		return b.label
	}
	return b.id
}

// Fill returns the fill color, or "" for the sink's default.
func (b *Box) Fill() string { return b.fill }
