package layout

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// Kind classifies a resolution diagnostic.
type Kind string

const (
	// KindCycle means a target was reached again while it was still being
	// resolved. The reference resolves against the canvas.
	KindCycle Kind = "cycle"

	// KindUnresolved means an anchor named an id that is not registered.
	// The reference resolves against the canvas.
	KindUnresolved Kind = "unresolved"

	// KindDepthExceeded means the reference chain grew past the resolver's
	// MaxDepth. The reference resolves against the canvas.
	KindDepthExceeded Kind = "depth_exceeded"
)

// Diagnostic describes a recoverable resolution problem. None of them abort a pass.
type Diagnostic struct {
	Kind Kind `json:"kind"`
	// Element is the id of the element whose anchor triggered the problem.
	Element string `json:"element"`
	// Target is the referenced id.
	Target string `json:"target"`
	// Role is the anchor slot that held the reference.
	Role Role `json:"role,omitempty"`
	// Chain lists the ids being chased when the problem was found,
	// outermost first.
	Chain []string `json:"chain,omitempty"`
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case KindCycle:
		return fmt.Sprintf("reference cycle: %s -> %s", strings.Join(d.Chain, " -> "), d.Target)
	case KindDepthExceeded:
		return fmt.Sprintf("reference chain too deep at %q (%d levels)", d.Target, len(d.Chain))
	default:
		return fmt.Sprintf("element %q: %s anchor references unknown element %q", d.Element, d.Role, d.Target)
	}
}

// Err converts the diagnostic to a coded error.
func (d Diagnostic) Err() error {
	code := errors.ErrCodeUnresolvedReference
	switch d.Kind {
	case KindCycle:
		code = errors.ErrCodeCycleDetected
	case KindDepthExceeded:
		code = errors.ErrCodeDepthExceeded
	}
	return errors.New(code, "%s", d.String())
}

// Sink receives diagnostics as they are found.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// NopSink discards diagnostics.
type NopSink struct{}

// Report does nothing.
func (NopSink) Report(Diagnostic) {}

// LogSink writes diagnostics to a logger. Cycles are warnings, depth
// overflows are errors and unknown references are debug noise.
type LogSink struct {
	Logger *log.Logger
}

// Report logs d at a level chosen by its kind.
func (s LogSink) Report(d Diagnostic) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	switch d.Kind {
	case KindCycle:
		l.Warn("layout cycle detected", "element", d.Element, "target", d.Target, "chain", strings.Join(d.Chain, " -> "))
	case KindDepthExceeded:
		l.Error("layout reference chain too deep", "element", d.Element, "target", d.Target, "depth", len(d.Chain))
	default:
		l.Debug("layout reference unresolved", "element", d.Element, "role", d.Role, "target", d.Target)
	}
}

// Collector records diagnostics. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report records d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of everything recorded so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diags...)
}

// Count returns how many diagnostics of kind k were recorded.
func (c *Collector) Count(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diags {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Err joins all recorded diagnostics into one error, or returns nil.
func (c *Collector) Err() error {
	diags := c.Diagnostics()
	if len(diags) == 0 {
		return nil
	}
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d.Err()
	}
	return stderrors.Join(errs...)
}

// MultiSink fans a diagnostic out to several sinks.
type MultiSink []Sink

// Report forwards d to every non-nil sink.
func (m MultiSink) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}
