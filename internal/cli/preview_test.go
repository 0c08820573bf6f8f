package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

func newTestPreview(t *testing.T, doc string, fit bool) previewModel {
	t.Helper()
	scene := writeScene(t, t.TempDir(), "scene.json", doc)
	c := New(io.Discard, LogInfo)
	m, err := c.newPreviewModel(context.Background(), c.baseOptions(scene, layoutFlags{}), fit)
	if err != nil {
		t.Fatalf("newPreviewModel error: %v", err)
	}
	return m
}

func resize(t *testing.T, m previewModel, w, h int) previewModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(previewModel)
}

func TestPreviewFollowsTerminalSize(t *testing.T) {
	m := newTestPreview(t, cardJSON, true)
	if !strings.Contains(m.View(), "Resolving") {
		t.Errorf("View before first size = %q, want placeholder", m.View())
	}

	m = resize(t, m, 40, 13)
	if want := (layout.Extent{Width: 320, Height: 160}); m.canvas != want {
		t.Errorf("canvas = %+v, want %+v", m.canvas, want)
	}
	if m.passes != 1 {
		t.Errorf("passes = %d, want 1", m.passes)
	}

	m = resize(t, m, 80, 23)
	if want := (layout.Extent{Width: 640, Height: 320}); m.canvas != want {
		t.Errorf("canvas = %+v, want %+v", m.canvas, want)
	}
	if m.passes != 2 {
		t.Errorf("passes = %d, want 2", m.passes)
	}
	if !strings.Contains(m.View(), "body") {
		t.Errorf("View missing body label:\n%s", m.View())
	}
}

func TestPreviewFixedCanvas(t *testing.T) {
	m := resize(t, newTestPreview(t, cardJSON, false), 50, 20)
	if want := (layout.Extent{Width: 200, Height: 100}); m.canvas != want {
		t.Errorf("canvas = %+v, want document canvas %+v", m.canvas, want)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	m = next.(previewModel)
	if !m.fit || m.canvas.Width != 50*8 {
		t.Errorf("after f: fit = %v, canvas = %+v, want fit to 400 wide", m.fit, m.canvas)
	}
}

func TestPreviewDiagnosticsPerPass(t *testing.T) {
	m := newTestPreview(t, cycleJSON, true)
	for i := 0; i < 3; i++ {
		m = resize(t, m, 40+i, 12)
	}
	// Each resize runs a fresh pass, so diagnostics never accumulate.
	if m.tally.count != 1 {
		t.Errorf("diagnostics = %d, want 1", m.tally.count)
	}
	if !strings.Contains(m.View(), "1 diagnostics") {
		t.Errorf("View missing diagnostic count:\n%s", m.View())
	}
}

func TestPreviewQuit(t *testing.T) {
	m := newTestPreview(t, cardJSON, true)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
