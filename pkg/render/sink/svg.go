package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/render"
)

const elementInteractionCSS = `
    .element { transition: stroke-width 0.2s ease; }
    .element.highlight { stroke-width: 3; }
    .element-text { pointer-events: none; }`

const elementInteractionJS = `
    document.querySelectorAll('.element').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	stroke      string
	labels      bool
	interactive bool
	highlight   map[string]bool
}

// WithBackground sets the canvas fill. An empty color leaves it transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithStroke sets the element outline color.
func WithStroke(color string) SVGOption { return func(r *svgRenderer) { r.stroke = color } }

// WithoutLabels omits element labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithInteraction adds hover highlighting.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithHighlight outlines the named elements in red, e.g. cycle members.
func WithHighlight(ids ...string) SVGOption {
	return func(r *svgRenderer) {
		for _, id := range ids {
			r.highlight[id] = true
		}
	}
}

// RenderSVG renders a frame as SVG. Elements are drawn in frame order, so
// later elements paint over earlier ones; labels go on top of everything.
// Elements with non-positive width or height are skipped.
func RenderSVG(f render.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{
		background: defaultBackground,
		stroke:     defaultStroke,
		labels:     true,
		highlight:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := f.Canvas.Width, f.Canvas.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", w, h, escapeXML(r.background))
	}

	for _, p := range f.Placements {
		if p.Rect.IsEmpty() {
			continue
		}
		r.renderElement(&buf, p)
	}
	if r.labels {
		for _, p := range f.Placements {
			if p.Rect.IsEmpty() || p.Label == "" {
				continue
			}
			renderLabel(&buf, p)
		}
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", elementInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", elementInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderElement(buf *bytes.Buffer, p render.Placement) {
	stroke, width := r.stroke, 1
	if r.highlight[p.ID] {
		stroke, width = "#e53e3e", 3
	}
	id := ""
	if p.ID != "" {
		id = fmt.Sprintf(` id="element-%s"`, escapeXML(p.ID))
	}
	fmt.Fprintf(buf, `  <rect%s class="element" x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n",
		id, p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height, escapeXML(fillFor(p)), escapeXML(stroke), width)
}

func renderLabel(buf *bytes.Buffer, p render.Placement) {
	w, h := float64(p.Rect.Width), float64(p.Rect.Height)
	size := fontSizeFor(w, h, len([]rune(p.Label)))
	label := truncateLabel(p.Label, w, size)
	cx := float64(p.Rect.X) + w/2
	cy := float64(p.Rect.Y) + h/2
	fmt.Fprintf(buf, `  <text class="element-text" x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		cx, cy, size, defaultText, escapeXML(label))
}
