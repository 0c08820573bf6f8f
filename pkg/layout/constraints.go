package layout

// Role names one of the six anchor slots of a constraint set.
type Role string

const (
	RoleCenterX Role = "center_x"
	RoleLeft    Role = "left"
	RoleRight   Role = "right"
	RoleCenterY Role = "center_y"
	RoleTop     Role = "top"
	RoleBottom  Role = "bottom"
)

// Roles lists every anchor role in resolution order.
var Roles = []Role{RoleCenterX, RoleLeft, RoleRight, RoleCenterY, RoleTop, RoleBottom}

// HAnchor ties a horizontal edge or center to a coordinate projected from
// Target. An empty Target refers to the canvas.
type HAnchor struct {
	Target string
	Align  HAlign
	Offset int
}

// VAnchor ties a vertical edge or center to a coordinate projected from
// Target. An empty Target refers to the canvas.
type VAnchor struct {
	Target string
	Align  VAlign
	Offset int
}

// Constraints is the declarative placement of one element. A nil anchor is
// absent. A zero Width or Height is derived from the anchors.
//
// Constraints values are built with the With* methods, each of which
// returns a copy; setting a role twice keeps the last value.
type Constraints struct {
	CenterX *HAnchor
	Left    *HAnchor
	Right   *HAnchor

	CenterY *VAnchor
	Top     *VAnchor
	Bottom  *VAnchor

	Width  int
	Height int
}

// Reference is one anchor that points at another element.
type Reference struct {
	Role   Role
	Target string
}

func (c Constraints) WithCenterX(target string, align HAlign, offset int) Constraints {
	c.CenterX = &HAnchor{Target: target, Align: align, Offset: offset}
	return c
}

func (c Constraints) WithLeft(target string, align HAlign, offset int) Constraints {
	c.Left = &HAnchor{Target: target, Align: align, Offset: offset}
	return c
}

func (c Constraints) WithRight(target string, align HAlign, offset int) Constraints {
	c.Right = &HAnchor{Target: target, Align: align, Offset: offset}
	return c
}

func (c Constraints) WithCenterY(target string, align VAlign, offset int) Constraints {
	c.CenterY = &VAnchor{Target: target, Align: align, Offset: offset}
	return c
}

func (c Constraints) WithTop(target string, align VAlign, offset int) Constraints {
	c.Top = &VAnchor{Target: target, Align: align, Offset: offset}
	return c
}

func (c Constraints) WithBottom(target string, align VAlign, offset int) Constraints {
	c.Bottom = &VAnchor{Target: target, Align: align, Offset: offset}
	return c
}

// WithWidth sets an explicit width. Zero means derive from anchors.
func (c Constraints) WithWidth(w int) Constraints {
	c.Width = w
	return c
}

// WithHeight sets an explicit height. Zero means derive from anchors.
func (c Constraints) WithHeight(h int) Constraints {
	c.Height = h
	return c
}

// WithSize sets both explicit dimensions.
func (c Constraints) WithSize(w, h int) Constraints {
	c.Width, c.Height = w, h
	return c
}

// HAnchor returns the horizontal anchor stored under role, or nil.
func (c Constraints) HAnchor(role Role) *HAnchor {
	switch role {
	case RoleCenterX:
		return c.CenterX
	case RoleLeft:
		return c.Left
	case RoleRight:
		return c.Right
	}
	return nil
}

// VAnchor returns the vertical anchor stored under role, or nil.
func (c Constraints) VAnchor(role Role) *VAnchor {
	switch role {
	case RoleCenterY:
		return c.CenterY
	case RoleTop:
		return c.Top
	case RoleBottom:
		return c.Bottom
	}
	return nil
}

// References returns the anchors that target another element, in role order.
func (c Constraints) References() []Reference {
	var refs []Reference
	for _, role := range Roles {
		var target string
		if a := c.HAnchor(role); a != nil {
			target = a.Target
		} else if a := c.VAnchor(role); a != nil {
			target = a.Target
		}
		if target != "" {
			refs = append(refs, Reference{Role: role, Target: target})
		}
	}
	return refs
}
