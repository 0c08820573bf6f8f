package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/buildinfo"
	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render/refgraph"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error       string              `json:"error"`
	Code        string              `json:"code,omitempty"`
	RequestID   string              `json:"request_id,omitempty"`
	Diagnostics []layout.Diagnostic `json:"diagnostics,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: requestIDFrom(r.Context()),
	}
	var de *pipeline.DiagnosticsError
	if stderrors.As(err, &de) {
		resp.Error = de.Error()
		resp.Diagnostics = de.Diagnostics
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", resp.RequestID, "path", r.URL.Path, "error", err)
	}
	s.respondJSON(w, status, resp)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var de *pipeline.DiagnosticsError
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &de):
		return http.StatusUnprocessableEntity
	case stderrors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidAlignment,
		errors.ErrCodeInvalidID,
		errors.ErrCodeInvalidSize,
		errors.ErrCodeDuplicateID:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// =============================================================================
// Request parsing
// =============================================================================

// readOptions builds pipeline options from the request body, its
// Content-Type and the query string.
func (s *Server) readOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, int, error) {
	format, err := scene.ParseFormat(r.Header.Get("Content-Type"))
	if err != nil {
		return pipeline.Options{}, http.StatusUnsupportedMediaType, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.limits.MaxBodyBytes))
	if err != nil {
		return pipeline.Options{}, statusFor(err), err
	}
	if len(body) == 0 {
		return pipeline.Options{}, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Data:           body,
		DocFormat:      string(format),
		FallbackCanvas: layout.Extent{Width: s.limits.Width, Height: s.limits.Height},
		MaxDepth:       s.limits.MaxDepth,
		NoLabels:       q.Has("no_labels") && q.Get("no_labels") != "false",
		Logger:         s.logger,
	}
	if v := q.Get("highlight"); v != "" {
		opts.Highlight = strings.Split(v, ",")
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"max_depth", &opts.MaxDepth},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "%s: not an integer: %q", p.name, v)
			}
			*p.dst = n
		}
	}
	// A request may lower the depth guard, never raise it past the server's.
	ceiling := s.limits.MaxDepth
	if ceiling <= 0 {
		ceiling = layout.DefaultMaxDepth
	}
	if opts.MaxDepth == 0 || opts.MaxDepth > ceiling {
		opts.MaxDepth = ceiling
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "scale: not a number: %q", v)
		}
		opts.Scale = f
	}
	if v := q.Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "strict: not a boolean: %q", v)
		}
		opts.Strict = b
	}
	return opts, http.StatusOK, nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleRender returns one artifact. The format comes from ?format=
// (default svg).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, status, err := s.readOptions(w, r)
	if err != nil {
		s.respondError(w, r, status, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}
	opts.Formats = []string{format}
	s.execute(w, r, opts, format)
}

// handleLayout returns the resolved frame and diagnostics as JSON.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, status, err := s.readOptions(w, r)
	if err != nil {
		s.respondError(w, r, status, err)
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}
	s.execute(w, r, opts, pipeline.FormatJSON)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, opts pipeline.Options, format string) {
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo.RenderHit))
	w.Header().Set("X-Diagnostics", strconv.Itoa(result.Stats.DiagnosticCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// handleGraph returns the scene's reference graph as DOT (default) or SVG.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, status, err := s.readOptions(w, r)
	if err != nil {
		s.respondError(w, r, status, err)
		return
	}
	sc, err := pipeline.Load(opts)
	if err != nil {
		s.respondError(w, r, statusFor(err), err)
		return
	}
	reg, err := sc.Doc.Build()
	if err != nil {
		s.respondError(w, r, statusFor(err), err)
		return
	}
	g := refgraph.Build(reg)
	dot := refgraph.ToDOT(g, refgraph.Options{Roles: r.URL.Query().Get("roles") == "true"})

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = io.WriteString(w, dot)
	case pipeline.FormatSVG:
		svg, err := refgraph.RenderSVG(r.Context(), dot)
		if err != nil {
			s.respondError(w, r, http.StatusInternalServerError, fmt.Errorf("render graph: %w", err))
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatSVG])
		_, _ = w.Write(svg)
	default:
		s.respondError(w, r, http.StatusBadRequest,
			errors.New(errors.ErrCodeInvalidFormat, "invalid graph format: %q (must be one of: dot, svg)", format))
	}
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
