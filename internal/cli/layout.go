package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// layoutCommand creates the layout command for printing resolved rectangles.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		asJSON  bool
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [scene]",
		Short: "Print the resolved rectangle of every element",
		Long: `Print the resolved rectangle of every element.

The layout command runs one pass over the scene and prints each element in
draw order with its position and size. Elements without an id are listed too;
they are drawn but cannot be referenced.

With --json the frame and its diagnostics are written as JSON instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions(args[0], flags)
			if asJSON {
				return c.runLayoutJSON(cmd.Context(), cmd.OutOrStdout(), opts, output, noCache)
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), opts, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the frame as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for --json (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout resolves the scene and prints the placements as a table.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.NoCache = noCache

	sc, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.Input, err)
	}
	lr, cacheHit, err := runner.LayoutWithCacheInfo(ctx, sc, opts)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	fmt.Fprintln(w, placementTable(lr.Frame))
	printStats(len(lr.Frame.Placements), len(lr.Diagnostics), cacheHit)
	printDiagnostics(lr.Diagnostics)
	return nil
}

// runLayoutJSON writes the frame and diagnostics as JSON.
func (c *CLI) runLayoutJSON(ctx context.Context, w io.Writer, opts pipeline.Options, output string, noCache bool) error {
	opts.Formats = []string{pipeline.FormatJSON}
	res, err := c.renderOne(ctx, opts, noCache)
	if err != nil {
		return err
	}
	if err := writeOutput(w, output, res.Artifacts[pipeline.FormatJSON]); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output != "" && output != "-" {
		printSuccess("Layout complete")
		printFile(output)
	}
	return nil
}

// placementTable renders the frame's placements as a bordered table.
func placementTable(f render.Frame) string {
	rows := make([][]string, len(f.Placements))
	for i, p := range f.Placements {
		id := p.ID
		if id == "" {
			id = "—"
		}
		rows[i] = []string{
			strconv.Itoa(p.Index),
			id,
			p.Label,
			strconv.Itoa(p.Rect.X),
			strconv.Itoa(p.Rect.Y),
			strconv.Itoa(p.Rect.Width),
			strconv.Itoa(p.Rect.Height),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	numberStyle := lipgloss.NewStyle().Foreground(colorCyan).Align(lipgloss.Right)
	emptyStyle := lipgloss.NewStyle().Foreground(colorRed).Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "ID", "Label", "X", "Y", "W", "H").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row < 0 || row >= len(f.Placements):
				return headerStyle.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorDim)
			case col >= 3 && f.Placements[row].Rect.IsEmpty():
				return emptyStyle.Padding(0, 1)
			case col >= 3:
				return numberStyle.Padding(0, 1)
			}
			return base.Foreground(colorWhite)
		})

	return fmt.Sprintf("%s\n%s", StyleTitle.Render(fmt.Sprintf("Canvas %dx%d", f.Canvas.Width, f.Canvas.Height)), t.Render())
}
