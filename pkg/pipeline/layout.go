package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout builds the registry for sc and runs one draw pass against
// the canvas chosen by opts. Diagnostics are collected and also logged
// through opts.Logger. In strict mode any diagnostic is returned as a
// [*DiagnosticsError] alongside the result.
func GenerateLayout(ctx context.Context, sc *Scene, opts Options) (*LayoutResult, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	reg, err := sc.Doc.Build()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	var collector layout.Collector
	res := layout.NewResolver(reg,
		layout.WithMaxDepth(opts.MaxDepth),
		layout.WithSink(layout.MultiSink{&collector, layout.LogSink{Logger: opts.Logger}}),
	)
	frame := render.Draw(ctx, res, opts.Canvas(sc.Doc), nil)

	result := &LayoutResult{Frame: frame, Diagnostics: collector.Diagnostics()}
	return result, strictErr(result, opts)
}

// strictErr returns the result's diagnostics as an error when opts is strict.
func strictErr(lr *LayoutResult, opts Options) error {
	if !opts.Strict || len(lr.Diagnostics) == 0 {
		return nil
	}
	return &DiagnosticsError{Diagnostics: lr.Diagnostics}
}
