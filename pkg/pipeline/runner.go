package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; every layout runs in its own pass.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
//
// In strict mode a pass with diagnostics stops the run before rendering;
// the returned error is a [*DiagnosticsError] and the partial result still
// carries the scene and the layout.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	sc, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Scene = sc
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ElementCount = len(sc.Doc.Elements)

	r.Logger.Debug("loaded scene",
		"source", sc.Source,
		"elements", result.Stats.ElementCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	lr, layoutHit, err := r.LayoutWithCacheInfo(ctx, sc, opts)
	if lr != nil {
		result.Layout = lr
		result.Stats.DiagnosticCount = len(lr.Diagnostics)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	if err != nil {
		return result, fmt.Errorf("layout: %w", err)
	}

	r.Logger.Debug("resolved layout",
		"placements", len(lr.Frame.Placements),
		"diagnostics", len(lr.Diagnostics),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sc, lr, opts)
	if err != nil {
		return result, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the scene named by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*Scene, error) {
	r.applyLogger(&opts)
	source := opts.Input
	if len(opts.Data) > 0 && source == "" {
		source = "<data>"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	sc, err := Load(opts)

	elements := 0
	if sc != nil {
		elements = len(sc.Doc.Elements)
	}
	hooks.OnLoadComplete(ctx, source, elements, time.Since(start), err)
	return sc, err
}

// LayoutWithCacheInfo runs a pass with caching and returns cache hit info.
// Frames are keyed by the document hash, the canvas and the depth limit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, sc *Scene, opts Options) (*LayoutResult, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(sc.Doc.Elements))
	start := time.Now()

	lr, hit, err := r.layout(ctx, sc, opts)

	diags := 0
	if lr != nil {
		diags = len(lr.Diagnostics)
	}
	hooks.OnLayoutComplete(ctx, diags, time.Since(start), err)
	return lr, hit, err
}

func (r *Runner) layout(ctx context.Context, sc *Scene, opts Options) (*LayoutResult, bool, error) {
	canvas := opts.Canvas(sc.Doc)
	cacheKey := r.Keyer.LayoutKey(sc.Hash, opts.LayoutKeyOpts(canvas))
	cacheHooks := observability.Cache()

	// Try cache first
	if !opts.NoCache {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached LayoutResult
			if err := json.Unmarshal(data, &cached); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				// Cached diagnostics were logged by the run that produced them.
				return &cached, true, strictErr(&cached, opts)
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cacheKey, "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	lr, err := GenerateLayout(ctx, sc, opts)
	if lr == nil {
		return nil, false, err
	}

	// Cache the result, including strict failures: the frame is the same.
	if !opts.NoCache {
		if data, merr := json.Marshal(lr); merr == nil {
			if serr := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); serr == nil {
				cacheHooks.OnCacheSet(ctx, "layout", len(data))
			} else {
				r.Logger.Warn("cache write failed", "key", cacheKey, "error", serr)
			}
		}
	}

	return lr, false, err
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, sc *Scene, opts Options) (*LayoutResult, error) {
	lr, _, err := r.LayoutWithCacheInfo(ctx, sc, opts)
	return lr, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The render counts as a hit only when every requested format was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sc *Scene, lr *LayoutResult, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, sc, lr, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

// cachedFormats are the formats worth caching. JSON and text are cheap to
// produce and embed the scene's source name.
var cachedFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

func (r *Runner) render(ctx context.Context, sc *Scene, lr *LayoutResult, opts Options) (map[string][]byte, bool, error) {
	useCache := opts.cacheable() && sc != nil
	cacheHooks := observability.Cache()
	canvas := lr.Frame.Canvas

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if useCache && cachedFormats[format] {
			key := r.Keyer.ArtifactKey(sc.Hash, opts.ArtifactKeyOpts(canvas, format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil // All artifacts from cache
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderFrame(ctx, sc, lr, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if !useCache || !cachedFormats[format] {
			continue
		}
		key := r.Keyer.ArtifactKey(sc.Hash, opts.ArtifactKeyOpts(canvas, format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		} else {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return artifacts, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, sc *Scene, lr *LayoutResult, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, sc, lr, opts)
	return artifacts, err
}

// BatchResult pairs one job of a batch with its outcome.
type BatchResult struct {
	Options Options
	Result  *Result
	Err     error
}

// RenderBatch executes jobs concurrently, at most limit at a time. A limit
// below 1 leaves concurrency unbounded. Each job runs its own pass, so jobs
// never share resolution state.
//
// A failing job does not cancel the others; its error is reported in its
// BatchResult. RenderBatch itself only fails when ctx is cancelled.
func (r *Runner) RenderBatch(ctx context.Context, jobs []Options, limit int) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(gctx, job)
			results[i] = BatchResult{Options: job, Result: res, Err: err}
			if err != nil {
				r.Logger.Debug("batch job failed", "input", job.Input, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
