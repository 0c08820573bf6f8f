package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render/refgraph"
)

// checkCommand creates the check command, which validates scenes with a
// strict layout pass.
func (c *CLI) checkCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "check [scene...]",
		Short: "Validate scenes and report layout diagnostics",
		Long: `Validate scenes and report layout diagnostics.

Each scene is loaded and resolved in strict mode. Reference cycles, unknown
targets and over-deep reference chains are listed per scene, along with every
cycle found in the static reference graph. The command exits non-zero when any
scene has a problem.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, input := range args {
				ok, err := c.runCheck(cmd.Context(), c.baseOptions(input, flags))
				if err != nil {
					return err
				}
				if !ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scene(s) have problems", failed, len(args))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// runCheck checks a single scene. It returns false when the scene fails to
// load or its pass reports diagnostics; err is reserved for cancellation.
func (c *CLI) runCheck(ctx context.Context, opts pipeline.Options) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	opts.Strict = true
	opts.NoCache = true
	opts.Logger = nil // diagnostics are printed, not logged

	sc, err := pipeline.Load(opts)
	if err != nil {
		printError("%s: %v", opts.Input, err)
		return false, nil
	}

	_, err = pipeline.GenerateLayout(ctx, sc, opts)
	var diagErr *pipeline.DiagnosticsError
	switch {
	case errors.As(err, &diagErr):
		printError("%s: %d layout diagnostic(s)", opts.Input, len(diagErr.Diagnostics))
		printDiagnostics(diagErr.Diagnostics)
	case err != nil:
		printError("%s: %v", opts.Input, err)
		return false, nil
	default:
		printSuccess("%s: %d elements, no problems", opts.Input, len(sc.Doc.Elements))
		return true, nil
	}

	if reg, err := sc.Doc.Build(); err == nil {
		for _, cycle := range refgraph.Build(reg).Cycles {
			printDetail("cycle: %s -> %s", strings.Join(cycle, " -> "), cycle[0])
		}
	}
	return false, nil
}
