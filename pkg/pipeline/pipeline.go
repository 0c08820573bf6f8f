// Package pipeline provides the load → layout → render pipeline for scene
// documents.
//
// The CLI and the HTTP service both go through this package so that canvas
// defaults, strict mode and caching behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read and validate a scene document (TOML, YAML or JSON)
//  2. Layout: run one draw pass and collect the resolved frame and diagnostics
//  3. Render: produce artifacts from the frame (SVG, PNG, PDF, JSON, text)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "dashboard.toml",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	sc, err := runner.Load(ctx, opts)
//	lr, err := runner.Layout(ctx, sc, opts)
//	artifacts, err := runner.Render(ctx, sc, lr, opts)
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the canvas width used when neither the options nor the
	// document set one.
	DefaultWidth = 800

	// DefaultHeight is the canvas height used when neither the options nor
	// the document set one.
	DefaultHeight = 600

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// MaxCanvas bounds each canvas dimension.
	MaxCanvas = 1 << 14
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatText: true,
}

// ContentTypes maps output formats to their media types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatText: "text/plain; charset=utf-8",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Input is a file path; Data holds an in-memory document
	// and takes precedence, in which case DocFormat names its encoding.
	Input     string `json:"input,omitempty"`
	Data      []byte `json:"-"`
	DocFormat string `json:"doc_format,omitempty"`

	// Layout options. Width and Height override the document's canvas;
	// FallbackCanvas applies only where the document sets no size.
	Width          int           `json:"width,omitempty"`
	Height         int           `json:"height,omitempty"`
	FallbackCanvas layout.Extent `json:"-"`
	MaxDepth       int           `json:"max_depth,omitempty"`
	Strict         bool          `json:"strict,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
	Highlight []string `json:"highlight,omitempty"`
	NoLabels  bool     `json:"no_labels,omitempty"`

	// NoCache skips cache reads and writes for this run.
	NoCache bool `json:"no_cache,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Scene is a loaded document together with the bytes it was decoded from.
type Scene struct {
	Doc    *scene.Document
	Source string
	Hash   string
}

// LayoutResult is the outcome of one draw pass.
type LayoutResult struct {
	Frame       render.Frame        `json:"frame"`
	Diagnostics []layout.Diagnostic `json:"diagnostics,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the loaded document.
	Scene *Scene

	// Layout holds the resolved frame and the pass diagnostics.
	Layout *LayoutResult

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount    int
	DiagnosticCount int
	LoadTime        time.Duration
	LayoutTime      time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the frame came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// DiagnosticsError is returned in strict mode when a pass reports problems.
type DiagnosticsError struct {
	Diagnostics []layout.Diagnostic
}

func (e *DiagnosticsError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return fmt.Sprintf("%d layout diagnostic(s): %s", len(e.Diagnostics), strings.Join(msgs, "; "))
}

// Unwrap exposes the coded error of every diagnostic.
func (e *DiagnosticsError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d.Err()
	}
	return errs
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, dropping blanks and
// duplicates, and validates the result.
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, ValidateFormats(out)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a document source is set.
func (o *Options) ValidateForLoad() error {
	if len(o.Data) == 0 && o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input file or document data is required")
	}
	if len(o.Data) > 0 {
		if _, err := scene.ParseFormat(o.DocFormat); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// ValidateForLayout validates the canvas overrides and sets layout defaults.
func (o *Options) ValidateForLayout() error {
	if o.Width < 0 || o.Height < 0 || o.Width > MaxCanvas || o.Height > MaxCanvas {
		return errors.New(errors.ErrCodeInvalidSize, "canvas %dx%d out of range (0..%d)", o.Width, o.Height, MaxCanvas)
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth must not be negative")
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = layout.DefaultMaxDepth
	}
	o.setLogger()
	return nil
}

// ValidateForRender validates formats and sets render defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive")
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Canvas returns the extent a pass runs against: the option overrides
// first, then the document's canvas, then FallbackCanvas, then the defaults.
func (o *Options) Canvas(doc *scene.Document) layout.Extent {
	var c layout.Extent
	if doc != nil {
		c = doc.Canvas.Extent()
	}
	c.Width = firstPositive(o.Width, c.Width, o.FallbackCanvas.Width, DefaultWidth)
	c.Height = firstPositive(o.Height, c.Height, o.FallbackCanvas.Height, DefaultHeight)
	return c
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// LayoutKeyOpts returns cache key options for a pass.
func (o *Options) LayoutKeyOpts(canvas layout.Extent) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:    canvas.Width,
		Height:   canvas.Height,
		MaxDepth: o.MaxDepth,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(canvas layout.Extent, format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Width:    canvas.Width,
		Height:   canvas.Height,
		MaxDepth: o.MaxDepth,
		Format:   format,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// cacheable reports whether artifacts for these options may be cached.
// Per-request decorations are not part of the key.
func (o *Options) cacheable() bool {
	return !o.NoCache && len(o.Highlight) == 0 && !o.NoLabels
}
