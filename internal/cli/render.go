package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	layoutFlags
	formats   string   // comma-separated output formats
	output    string   // output file (single scene, single format) or directory
	strict    bool     // fail scenes whose pass reports diagnostics
	noCache   bool     // skip cache reads and writes
	jobs      int      // concurrent renders
	scale     float64  // PNG pixel density
	highlight []string // element ids to emphasise in SVG output
	noLabels  bool     // omit element labels
}

// renderCommand creates the render command for generating artifacts from
// one or more scene documents.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [scene...]",
		Short: "Render scene documents to SVG, PNG, PDF, JSON or text",
		Long: `Render scene documents to SVG, PNG, PDF, JSON or text.

Each scene is resolved in its own layout pass. Several scenes render
concurrently (see --jobs). Output files are written next to each input unless
--output names a directory, or a file when there is exactly one scene and one
format. Use --output - to write a single artifact to stdout.

Layouts and artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, flags)
		},
	}

	flags.layoutFlags.register(cmd)
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, txt (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single scene and format) or directory")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat layout diagnostics as errors")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", defaultConcurrency, "number of scenes rendered concurrently")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().StringSliceVar(&flags.highlight, "highlight", nil, "element ids to highlight (SVG)")
	cmd.Flags().BoolVar(&flags.noLabels, "no-labels", false, "omit element labels")

	return cmd
}

// runRender renders every input and writes the artifacts.
func (c *CLI) runRender(cmd *cobra.Command, inputs []string, flags renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats, err := parseFormats(flags.formats)
	if err != nil {
		return err
	}
	single := len(inputs) == 1 && len(formats) == 1
	if flags.output == "-" && !single {
		return fmt.Errorf("--output - needs exactly one scene and one format")
	}
	if single && filepath.Ext(flags.output) != "" && filepath.Clean(flags.output) == filepath.Clean(inputs[0]) {
		return fmt.Errorf("--output %s would overwrite the scene document", flags.output)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	jobs := make([]pipeline.Options, len(inputs))
	for i, input := range inputs {
		opts := c.baseOptions(input, flags.layoutFlags)
		opts.Formats = formats
		opts.Strict = flags.strict
		opts.NoCache = flags.noCache
		opts.Scale = flags.scale
		opts.Highlight = flags.highlight
		opts.NoLabels = flags.noLabels
		jobs[i] = opts
	}

	prog := newProgress(logger)
	spinner := newSpinnerTo(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %d scene(s)...", len(inputs)))
	spinner.Start()

	results, err := runner.RenderBatch(ctx, jobs, flags.jobs)
	if err != nil {
		spinner.StopWithError("Rendering interrupted")
		return err
	}
	spinner.Stop()

	failed := 0
	for _, br := range results {
		if !c.reportRender(cmd, br, flags.output, single) {
			failed++
		}
	}
	prog.done(fmt.Sprintf("Rendered %d of %d scene(s)", len(results)-failed, len(results)))

	if failed > 0 {
		return fmt.Errorf("%d of %d scene(s) failed", failed, len(results))
	}
	if single && flags.output != "-" {
		printNewline()
		printNextStep("Preview", appName+" preview "+inputs[0])
	}
	return nil
}

// reportRender prints the outcome of one batch job and writes its artifacts.
// It returns false when the job failed.
func (c *CLI) reportRender(cmd *cobra.Command, br pipeline.BatchResult, output string, single bool) bool {
	input := br.Options.Input
	if br.Err != nil {
		var diagErr *pipeline.DiagnosticsError
		if errors.As(br.Err, &diagErr) {
			printError("%s: %d layout diagnostic(s)", input, len(diagErr.Diagnostics))
			printDiagnostics(diagErr.Diagnostics)
			return false
		}
		printError("%s: %v", input, br.Err)
		return false
	}

	res := br.Result
	if output == "-" {
		for _, data := range res.Artifacts {
			if err := writeOutput(cmd.OutOrStdout(), "-", data); err != nil {
				printError("%s: %v", input, err)
				return false
			}
		}
		return true
	}

	printSuccess("%s", input)
	for _, format := range br.Options.Formats {
		path := outputPath(input, format, output, single)
		if err := writeOutput(cmd.OutOrStdout(), path, res.Artifacts[format]); err != nil {
			printError("write %s: %v", path, err)
			return false
		}
		printFile(path)
	}
	printStats(res.Stats.ElementCount, res.Stats.DiagnosticCount, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	if res.Layout != nil {
		printDiagnostics(res.Layout.Diagnostics)
	}
	return true
}

// outputPath derives the artifact path for input and format.
//
// With no output the artifact sits next to input. An output with an
// extension names the file directly when only one artifact is produced;
// otherwise output is a directory. A derived path never replaces input:
// "scene.json" rendered as json becomes "scene.frame.json".
func outputPath(input, format, output string, single bool) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	var path string
	switch {
	case output == "":
		path = base + "." + format
	case single && filepath.Ext(output) != "":
		return output
	default:
		path = filepath.Join(output, filepath.Base(base)+"."+format)
	}
	if filepath.Clean(path) == filepath.Clean(input) {
		path = strings.TrimSuffix(path, "."+format) + ".frame." + format
	}
	return path
}

// renderOne runs the full pipeline for a single scene. It is shared by the
// commands that only need one result.
func (c *CLI) renderOne(ctx context.Context, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.NoCache = noCache
	return runner.Execute(ctx, opts)
}
