package sink

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

func testFrame() render.Frame {
	return render.Frame{
		Canvas: layout.Extent{Width: 200, Height: 100},
		Placements: []render.Placement{
			{Index: 0, ID: "panel", Label: "Panel", Fill: "#336699", Rect: layout.NewRect(0, 0, 100, 100)},
			{Index: 1, ID: "note", Label: "<a&b>", Rect: layout.NewRect(120, 20, 60, 40)},
			{Index: 2, ID: "gone", Label: "Gone", Rect: layout.NewRect(150, 0, 0, 10)},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(testFrame()))

	for _, want := range []string{
		`viewBox="0 0 200 100"`,
		`id="element-panel"`,
		`fill="#336699"`,
		`fill="` + palette[1] + `"`,
		`&lt;a&amp;b&gt;`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(svg, "element-gone") {
		t.Error("empty element should be skipped")
	}
	if strings.Contains(svg, "<script") {
		t.Error("interaction script should be opt-in")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("svg should be closed")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(testFrame(),
		WithBackground(""),
		WithoutLabels(),
		WithInteraction(),
		WithHighlight("note"),
	))

	if strings.Contains(svg, "<text") {
		t.Error("WithoutLabels should omit text")
	}
	if !strings.Contains(svg, "<script") {
		t.Error("WithInteraction should add the script")
	}
	if strings.Contains(svg, `fill="`+defaultBackground+`"`) {
		t.Error("empty background should not be drawn")
	}
	if !strings.Contains(svg, `stroke="#e53e3e" stroke-width="3"`) {
		t.Error("highlighted element should use the highlight stroke")
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := RenderPNG(testFrame(), WithScale(1), WithoutPNGLabels())
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 200x100", b)
	}

	want := color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}
	got := color.RGBAModel.Convert(img.At(50, 50)).(color.RGBA)
	if got != want {
		t.Errorf("panel pixel = %v, want %v", got, want)
	}
	bg := color.RGBAModel.Convert(img.At(110, 90)).(color.RGBA)
	if bg != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("background pixel = %v, want white", bg)
	}
}

func TestRenderPNGScaleAndLabels(t *testing.T) {
	data, err := RenderPNG(testFrame(), WithScale(2))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.DecodeConfig() error: %v", err)
	}
	if cfg.Width != 400 || cfg.Height != 200 {
		t.Errorf("size = %dx%d, want 400x200", cfg.Width, cfg.Height)
	}
}

func TestRenderPNGRejectsEmptyCanvas(t *testing.T) {
	_, err := RenderPNG(render.Frame{})
	if !errors.Is(err, errors.ErrCodeInvalidSize) {
		t.Errorf("RenderPNG(empty) error = %v, want INVALID_SIZE", err)
	}
}

func TestRenderJSON(t *testing.T) {
	diags := []layout.Diagnostic{{
		Kind: layout.KindCycle, Element: "b", Target: "a", Role: layout.RoleLeft, Chain: []string{"a", "b"},
	}}
	data, err := RenderJSON(testFrame(), WithJSONSource("scene.toml"), WithJSONDiagnostics(diags))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}

	if out.Width != 200 || out.Height != 100 {
		t.Errorf("size = %dx%d, want 200x100", out.Width, out.Height)
	}
	if out.Source != "scene.toml" {
		t.Errorf("Source = %q", out.Source)
	}
	if len(out.Elements) != 3 {
		t.Fatalf("Elements count = %d, want 3", len(out.Elements))
	}
	if e := out.Elements[1]; e.ID != "note" || e.X != 120 || e.Width != 60 {
		t.Errorf("Elements[1] = %+v", e)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Message != "reference cycle: a -> b -> a" {
		t.Errorf("Diagnostics = %+v", out.Diagnostics)
	}
}

func TestRenderJSONWithoutDiagnostics(t *testing.T) {
	data, err := RenderJSON(render.Frame{Canvas: layout.Extent{Width: 1, Height: 1}})
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	if strings.Contains(string(data), "diagnostics") {
		t.Error("diagnostics should be omitted when empty")
	}
	if !strings.Contains(string(data), `"elements": []`) {
		t.Error("elements should be an empty array, not null")
	}
}

func TestRenderText(t *testing.T) {
	frame := render.Frame{
		Canvas: layout.Extent{Width: 10, Height: 4},
		Placements: []render.Placement{
			{Index: 0, ID: "a", Label: "hi", Rect: layout.NewRect(0, 0, 10, 4)},
		},
	}
	got := string(RenderText(frame, WithCells(10, 4)))
	want := "┌────────┐\n" +
		"│   hi   │\n" +
		"│        │\n" +
		"└────────┘\n"
	if got != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", got, want)
	}
}

func TestGridOverlapAndClipping(t *testing.T) {
	g := NewGrid(layout.Extent{Width: 6, Height: 3}, 6, 3)
	g.Paint(box(""), layout.NewRect(0, 0, 6, 3))
	g.Paint(box(""), layout.NewRect(4, 1, 10, 1))
	g.Paint(box(""), layout.NewRect(0, 2, 1, 1))
	g.Paint(box(""), layout.NewRect(1, 1, 0, 5))

	want := "┌────┐\n" +
		"│   ──\n" +
		"■────┘\n"
	if got := g.String(); got != want {
		t.Errorf("grid =\n%s\nwant\n%s", got, want)
	}
	if cols, rows := g.Size(); cols != 6 || rows != 3 {
		t.Errorf("Size() = %d,%d", cols, rows)
	}
}

func TestGridPaintHugeRect(t *testing.T) {
	g := NewGrid(layout.Extent{Width: 800, Height: 480}, 0, 0)
	cols, rows := g.Size()

	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Paint(box("wide"), layout.NewRect(-1<<36, 0, 1<<37, 480))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Paint of an oversized rect did not finish")
	}

	lines := strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n")
	if len(lines) != rows {
		t.Fatalf("rows = %d, want %d", len(lines), rows)
	}
	if want := strings.Repeat("─", cols); lines[0] != want {
		t.Errorf("top row = %q, want %q", lines[0], want)
	}
	if want := strings.Repeat("─", cols); lines[rows-1] != want {
		t.Errorf("bottom row = %q, want %q", lines[rows-1], want)
	}
	if lines[1] != "" {
		t.Errorf("interior row = %q, want blank", lines[1])
	}
}

func TestGridPaintOffGrid(t *testing.T) {
	g := NewGrid(layout.Extent{Width: 80, Height: 32}, 10, 2)
	g.Paint(box("left"), layout.NewRect(-500, 0, 100, 32))
	g.Paint(box("below"), layout.NewRect(0, 1000, 80, 32))
	if got, want := g.String(), "\n\n"; got != want {
		t.Errorf("grid = %q, want %q", got, want)
	}
}

func TestNewGridDefaultCellSize(t *testing.T) {
	g := NewGrid(layout.Extent{Width: 800, Height: 480}, 0, 0)
	if cols, rows := g.Size(); cols != 100 || rows != 30 {
		t.Errorf("Size() = %d,%d, want 100,30", cols, rows)
	}
}

type box string

func (b box) ID() string { return string(b) }

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#336699", color.RGBA{0x33, 0x66, 0x99, 0xff}, true},
		{"#fff", color.RGBA{0xff, 0xff, 0xff, 0xff}, true},
		{"red", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := parseHexColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
