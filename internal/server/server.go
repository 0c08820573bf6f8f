// Package server implements the anchorlayout HTTP render service.
//
// Clients POST a scene document and receive a rendered artifact or the
// resolved frame. Every request runs its own draw pass through a shared
// [pipeline.Runner], so concurrent requests never share resolution state.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

// Server serves the render API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	limits  Limits
	handler http.Handler
}

// Limits bounds request handling and supplies pass defaults.
type Limits struct {
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	MaxDepth       int
	Width          int
	Height         int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 30 * time.Second,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithLimits replaces the default limits. Zero fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(s *Server) {
		if l.MaxBodyBytes > 0 {
			s.limits.MaxBodyBytes = l.MaxBodyBytes
		}
		if l.RequestTimeout > 0 {
			s.limits.RequestTimeout = l.RequestTimeout
		}
		s.limits.MaxDepth = l.MaxDepth
		s.limits.Width = l.Width
		s.limits.Height = l.Height
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		logger: runner.Logger,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.limits.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Post("/layout", s.handleLayout)
		r.Post("/graph", s.handleGraph)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests up to ten seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
