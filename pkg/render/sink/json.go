package sink

import (
	"encoding/json"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	source      string
	diagnostics []layout.Diagnostic
}

// WithJSONSource records the scene the frame came from.
func WithJSONSource(name string) JSONOption { return func(r *jsonRenderer) { r.source = name } }

// WithJSONDiagnostics includes the diagnostics reported during the pass.
func WithJSONDiagnostics(diags []layout.Diagnostic) JSONOption {
	return func(r *jsonRenderer) { r.diagnostics = diags }
}

type jsonOutput struct {
	Source      string           `json:"source,omitempty"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Elements    []jsonElement    `json:"elements"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonElement struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Label  string `json:"label,omitempty"`
	Fill   string `json:"fill,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type jsonDiagnostic struct {
	Kind    string   `json:"kind"`
	Element string   `json:"element"`
	Target  string   `json:"target"`
	Role    string   `json:"role,omitempty"`
	Chain   []string `json:"chain,omitempty"`
	Message string   `json:"message"`
}

// RenderJSON exports the frame as a pretty-printed JSON document: the
// canvas size, every element's rectangle in draw order and, optionally, the
// pass diagnostics.
//
// RenderJSON does not modify f and is safe to call concurrently.
func RenderJSON(f render.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Source:   r.source,
		Width:    f.Canvas.Width,
		Height:   f.Canvas.Height,
		Elements: make([]jsonElement, len(f.Placements)),
	}
	for i, p := range f.Placements {
		out.Elements[i] = jsonElement{
			Index:  p.Index,
			ID:     p.ID,
			Label:  p.Label,
			Fill:   p.Fill,
			X:      p.Rect.X,
			Y:      p.Rect.Y,
			Width:  p.Rect.Width,
			Height: p.Rect.Height,
		}
	}
	for _, d := range r.diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Kind:    string(d.Kind),
			Element: d.Element,
			Target:  d.Target,
			Role:    string(d.Role),
			Chain:   d.Chain,
			Message: d.String(),
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
