package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/render/sink"
)

// RenderFrame generates output artifacts in the requested formats.
func RenderFrame(ctx context.Context, sc *Scene, lr *LayoutResult, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(lr.Frame, svgOpts...)
		case FormatPNG:
			pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
			if opts.NoLabels {
				pngOpts = append(pngOpts, sink.WithoutPNGLabels())
			}
			data, err = sink.RenderPNG(lr.Frame, pngOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, lr.Frame, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			var source string
			if sc != nil {
				source = sc.Source
			}
			data, err = sink.RenderJSON(lr.Frame,
				sink.WithJSONSource(source),
				sink.WithJSONDiagnostics(lr.Diagnostics))
		case FormatText:
			data = sink.RenderText(lr.Frame)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.NoLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	if len(opts.Highlight) > 0 {
		svgOpts = append(svgOpts, sink.WithHighlight(opts.Highlight...))
	}
	return svgOpts
}
