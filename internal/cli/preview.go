package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/render/sink"
)

// previewChrome is the number of terminal rows taken by the header and
// footer around the grid.
const previewChrome = 3

// previewCommand creates the preview command, an interactive terminal view
// that re-resolves the scene whenever the terminal is resized.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags layoutFlags
		fixed bool
	)

	cmd := &cobra.Command{
		Use:   "preview [scene]",
		Short: "Preview a scene in the terminal",
		Long: `Preview a scene in the terminal.

By default the canvas follows the terminal size, so anchors to the canvas edges
move as the window is resized. Every resize runs a fresh layout pass. With
--fixed the document canvas is kept and only the character grid is rescaled.

Keys: f toggles fit/fixed, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := c.newPreviewModel(ctx, c.baseOptions(args[0], flags), !fixed)
			if err != nil {
				return err
			}
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("preview: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&fixed, "fixed", false, "keep the document canvas instead of fitting the terminal")

	return cmd
}

// =============================================================================
// previewModel - Live terminal preview
// =============================================================================

// diagTally counts the diagnostics of the most recent pass.
type diagTally struct {
	count int
	last  string
}

func (t *diagTally) Report(d layout.Diagnostic) {
	t.count++
	t.last = d.String()
}

// previewModel is the bubbletea model for the preview command. The resolver
// is built once; each redraw opens its own pass.
type previewModel struct {
	ctx      context.Context
	source   string
	resolver *layout.Resolver
	tally    *diagTally
	document layout.Extent

	fit    bool
	width  int
	height int

	canvas layout.Extent
	grid   string
	passes int
}

func (c *CLI) newPreviewModel(ctx context.Context, opts pipeline.Options, fit bool) (previewModel, error) {
	sc, err := pipeline.Load(opts)
	if err != nil {
		return previewModel{}, fmt.Errorf("load %s: %w", opts.Input, err)
	}
	reg, err := sc.Doc.Build()
	if err != nil {
		return previewModel{}, fmt.Errorf("build registry: %w", err)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = layout.DefaultMaxDepth
	}

	tally := &diagTally{}
	return previewModel{
		ctx:      ctx,
		source:   sc.Source,
		resolver: layout.NewResolver(reg, layout.WithMaxDepth(opts.MaxDepth), layout.WithSink(tally)),
		tally:    tally,
		document: opts.Canvas(sc.Doc),
		fit:      fit,
	}, nil
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "f":
			m.fit = !m.fit
			m = m.redraw()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.redraw()
	}
	return m, nil
}

// redraw resolves the scene against the current canvas and paints it onto
// a grid the size of the terminal.
func (m previewModel) redraw() previewModel {
	if m.width <= 0 || m.height <= 0 {
		return m
	}
	cols := m.width
	rows := max(1, m.height-previewChrome)

	m.canvas = m.document
	if m.fit {
		m.canvas = layout.Extent{
			Width:  cols * sink.DefaultCellWidth,
			Height: rows * sink.DefaultCellHeight,
		}
	}

	grid := sink.NewGrid(m.canvas, cols, rows)
	m.tally.count, m.tally.last = 0, ""
	render.Draw(m.ctx, m.resolver, m.canvas, grid)
	m.grid = grid.String()
	m.passes++
	return m
}

func (m previewModel) View() string {
	if m.grid == "" {
		return StyleDim.Render("Resolving " + m.source + "...")
	}

	var b strings.Builder
	mode := "fixed"
	if m.fit {
		mode = "fit"
	}
	b.WriteString(StyleTitle.Render(m.source))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  canvas %dx%d · %s · pass %d",
		m.canvas.Width, m.canvas.Height, mode, m.passes)))
	if m.tally.count > 0 {
		b.WriteString("  ")
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%d diagnostics", m.tally.count)))
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(m.grid, "\n"))
	b.WriteString("\n")

	footer := "f fit/fixed  q quit"
	if m.tally.last != "" {
		footer = m.tally.last + "  ·  " + footer
	}
	b.WriteString(StyleDim.Render(footer))
	return b.String()
}
