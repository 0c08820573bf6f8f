package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render/refgraph"
)

const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
	graphFormatPDF = "pdf"
)

// graphCommand creates the graph command for drawing anchor references.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format string
		output string
		roles  bool
	)

	cmd := &cobra.Command{
		Use:   "graph [scene]",
		Short: "Draw the anchor reference graph of a scene",
		Long: `Draw the anchor reference graph of a scene.

Every element is a node and every anchor that targets another element is an
edge. Elements on a reference cycle are highlighted and ids that are
referenced but never defined appear as dashed nodes.

DOT output needs no external tools; SVG and PDF are laid out with Graphviz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], format, output, roles)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", graphFormatDOT, "output format: dot (default), svg, pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&roles, "roles", false, "label edges with anchor roles")

	return cmd
}

// runGraph builds the reference graph of input and writes it in format.
func (c *CLI) runGraph(ctx context.Context, w, errW io.Writer, input, format, output string, roles bool) error {
	sc, err := pipeline.Load(pipeline.Options{Input: input})
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	reg, err := sc.Doc.Build()
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	g := refgraph.Build(reg)
	dot := refgraph.ToDOT(g, refgraph.Options{Roles: roles})
	c.Logger.Debug("built reference graph", "nodes", len(g.Nodes), "edges", len(g.Edges), "cycles", len(g.Cycles))

	var data []byte
	switch format {
	case graphFormatDOT:
		data = []byte(dot)
	case graphFormatSVG, graphFormatPDF:
		spinner := newSpinnerTo(ctx, errW, "Laying out reference graph...")
		spinner.Start()
		if format == graphFormatSVG {
			data, err = refgraph.RenderSVG(ctx, dot)
		} else {
			data, err = refgraph.RenderPDF(ctx, dot)
		}
		if err != nil {
			spinner.StopWithError("Graph layout failed")
			return fmt.Errorf("render graph: %w", err)
		}
		spinner.Stop()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "invalid graph format: %q (must be one of: dot, svg, pdf)", format)
	}

	if err := writeOutput(w, output, data); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	if output != "" && output != "-" {
		printSuccess("Reference graph written")
		printFile(output)
		if members := g.CycleMembers(); len(members) > 0 {
			printWarning("%d element(s) on a reference cycle", len(members))
		}
	}
	return nil
}
