package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// HAlign projects a rectangle onto the horizontal axis.
// The zero value means "use the anchor role's default".
type HAlign uint8

const (
	HAlignDefault HAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// VAlign projects a rectangle onto the vertical axis.
// The zero value means "use the anchor role's default".
type VAlign uint8

const (
	VAlignDefault VAlign = iota
	AlignTop
	AlignMiddle
	AlignBottom
)

var hAlignNames = map[HAlign]string{
	HAlignDefault: "",
	AlignLeft:     "left",
	AlignCenter:   "center",
	AlignRight:    "right",
}

var vAlignNames = map[VAlign]string{
	VAlignDefault: "",
	AlignTop:      "top",
	AlignMiddle:   "middle",
	AlignBottom:   "bottom",
}

func (a HAlign) String() string {
	if s, ok := hAlignNames[a]; ok {
		return s
	}
	return fmt.Sprintf("HAlign(%d)", uint8(a))
}

func (a VAlign) String() string {
	if s, ok := vAlignNames[a]; ok {
		return s
	}
	return fmt.Sprintf("VAlign(%d)", uint8(a))
}

// Or returns a, or def when a is the default value.
func (a HAlign) Or(def HAlign) HAlign {
	if a == HAlignDefault {
		return def
	}
	return a
}

// Or returns a, or def when a is the default value.
func (a VAlign) Or(def VAlign) VAlign {
	if a == VAlignDefault {
		return def
	}
	return a
}

// normalizeAlignName lowercases s and maps spaces and dashes to
// underscores so "Vertical Center" and "vertical-center" compare equal.
func normalizeAlignName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// ParseHAlign parses a horizontal alignment name. The empty string parses
// to HAlignDefault. "middle" is accepted as a synonym for "center".
func ParseHAlign(s string) (HAlign, error) {
	switch normalizeAlignName(s) {
	case "":
		return HAlignDefault, nil
	case "left", "start":
		return AlignLeft, nil
	case "center", "centre", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	}
	return HAlignDefault, errors.New(errors.ErrCodeInvalidAlignment, "unknown horizontal alignment %q", s)
}

// ParseVAlign parses a vertical alignment name. The empty string parses
// to VAlignDefault. "center" is accepted as a synonym for "middle".
func ParseVAlign(s string) (VAlign, error) {
	switch normalizeAlignName(s) {
	case "":
		return VAlignDefault, nil
	case "top", "start":
		return AlignTop, nil
	case "middle", "center", "centre":
		return AlignMiddle, nil
	case "bottom", "end":
		return AlignBottom, nil
	}
	return VAlignDefault, errors.New(errors.ErrCodeInvalidAlignment, "unknown vertical alignment %q", s)
}

// Projector maps a rectangle and an alignment to a single coordinate.
// Implementations must be pure.
type Projector interface {
	ProjectX(r Rect, a HAlign) int
	ProjectY(r Rect, a VAlign) int
}

// DefaultProjector projects onto edges and truncated centers.
// A default alignment projects like Left and Top.
type DefaultProjector struct{}

// ProjectX returns the x-coordinate of r selected by a.
func (DefaultProjector) ProjectX(r Rect, a HAlign) int {
	switch a {
	case AlignCenter:
		return r.CenterX()
	case AlignRight:
		return r.Right()
	default:
		return r.X
	}
}

// ProjectY returns the y-coordinate of r selected by a.
func (DefaultProjector) ProjectY(r Rect, a VAlign) int {
	switch a {
	case AlignMiddle:
		return r.CenterY()
	case AlignBottom:
		return r.Bottom()
	default:
		return r.Y
	}
}
