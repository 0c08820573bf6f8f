package layout

// Element is an externally owned visual unit. An empty ID makes the element
// unaddressable by other elements' anchors; it is still drawn.
type Element interface {
	ID() string
}

// Entry pairs an element with its constraints. Entries live as long as the
// registry; resolved geometry is never stored on them.
type Entry struct {
	Element     Element
	Constraints Constraints

	index int
}

// ID returns the element identifier, or "" for unaddressable elements.
func (e *Entry) ID() string {
	if e == nil || e.Element == nil {
		return ""
	}
	return e.Element.ID()
}

// Index returns the entry's position in registration order.
func (e *Entry) Index() int { return e.index }

// Registry is an insertion-ordered collection of entries with an id lookup.
//
// Adding an id that is already registered shadows the earlier entry in
// lookups; both entries remain in draw order. Registry is not safe for
// concurrent mutation, but concurrent reads are fine once populated.
type Registry struct {
	entries []*Entry
	byID    map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Entry)}
}

// Add appends el with its constraints and returns the new entry.
func (r *Registry) Add(el Element, c Constraints) *Entry {
	e := &Entry{Element: el, Constraints: c, index: len(r.entries)}
	r.entries = append(r.entries, e)
	if id := e.ID(); id != "" {
		r.byID[id] = e
	}
	return e
}

// Lookup returns the entry registered under id.
func (r *Registry) Lookup(id string) (*Entry, bool) {
	if id == "" {
		return nil, false
	}
	e, ok := r.byID[id]
	return e, ok
}

// Entries returns the entries in registration order. The slice is a copy.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Elements returns the registered elements in registration order.
func (r *Registry) Elements() []Element {
	out := make([]Element, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Element
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.entries) }
