package scene

import (
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// Validate checks ids, sizes and alignment names. It returns the first
// problem found, in document order.
//
// Validate returns an error if:
//   - The canvas or an element has a negative size (INVALID_SIZE)
//   - An id or anchor target is malformed (INVALID_ID)
//   - Two elements share an id (DUPLICATE_ID)
//   - An alignment name is unknown or belongs to the other axis (INVALID_ALIGNMENT)
func (d *Document) Validate() error {
	if d.Canvas.Width < 0 || d.Canvas.Height < 0 {
		return errors.New(errors.ErrCodeInvalidSize, "canvas size %dx%d is negative", d.Canvas.Width, d.Canvas.Height)
	}

	seen := make(map[string]int, len(d.Elements))
	for i, el := range d.Elements {
		if err := errors.ValidateElementID(el.ID); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "element %d", i)
		}
		if el.ID != "" {
			if first, dup := seen[el.ID]; dup {
				return errors.New(errors.ErrCodeDuplicateID, "element %q defined twice (elements %d and %d)", el.ID, first, i)
			}
			seen[el.ID] = i
		}
		if el.Width < 0 || el.Height < 0 {
			return errors.New(errors.ErrCodeInvalidSize, "element %s: size %dx%d is negative", el.name(i), el.Width, el.Height)
		}
		if _, err := el.Constraints(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "element %s", el.name(i))
		}
		for _, ra := range el.anchors() {
			if err := errors.ValidateElementID(ra.anchor.Target); err != nil {
				return errors.Wrap(errors.GetCode(err), err, "element %s: %s anchor target", el.name(i), ra.role)
			}
		}
	}
	return nil
}

// Constraints converts the element's anchors to layout constraints.
func (e Element) Constraints() (layout.Constraints, error) {
	c := layout.Constraints{}.WithSize(e.Width, e.Height)
	for _, ra := range e.anchors() {
		a := ra.anchor
		switch ra.role {
		case layout.RoleCenterX, layout.RoleLeft, layout.RoleRight:
			align, err := layout.ParseHAlign(a.Align)
			if err != nil {
				return c, errors.Wrap(errors.ErrCodeInvalidAlignment, err, "%s anchor", ra.role)
			}
			switch ra.role {
			case layout.RoleCenterX:
				c = c.WithCenterX(a.Target, align, a.Offset)
			case layout.RoleLeft:
				c = c.WithLeft(a.Target, align, a.Offset)
			default:
				c = c.WithRight(a.Target, align, a.Offset)
			}
		default:
			align, err := layout.ParseVAlign(a.Align)
			if err != nil {
				return c, errors.Wrap(errors.ErrCodeInvalidAlignment, err, "%s anchor", ra.role)
			}
			switch ra.role {
			case layout.RoleCenterY:
				c = c.WithCenterY(a.Target, align, a.Offset)
			case layout.RoleTop:
				c = c.WithTop(a.Target, align, a.Offset)
			default:
				c = c.WithBottom(a.Target, align, a.Offset)
			}
		}
	}
	return c, nil
}

// Build validates the document and returns a registry holding one [Box]
// per element, in document order.
func (d *Document) Build() (*layout.Registry, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	reg := layout.NewRegistry()
	for _, el := range d.Elements {
		c, err := el.Constraints()
		if err != nil {
			return nil, err
		}
		reg.Add(NewBox(el.ID, el.Label, el.Fill), c)
	}
	return reg, nil
}

// References returns, for every element id, the ids its anchors target.
// Canvas references are omitted. Unaddressable elements are keyed "#<index>".
func (d *Document) References() map[string][]layout.Reference {
	out := make(map[string][]layout.Reference, len(d.Elements))
	for i, el := range d.Elements {
		c, err := el.Constraints()
		if err != nil {
			continue
		}
		out[el.name(i)] = c.References()
	}
	return out
}

// Names returns the element names in document order, using "#<index>" for
// unaddressable elements.
func (d *Document) Names() []string {
	out := make([]string, len(d.Elements))
	for i, el := range d.Elements {
		out[i] = el.name(i)
	}
	return out
}
