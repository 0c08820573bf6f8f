package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/internal/server"
	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

// serveKeyPrefix scopes service cache entries away from CLI renders.
const serveKeyPrefix = "serve:"

// serveCommand creates the serve command for the HTTP render service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Long: `Run the HTTP render service.

Endpoints:
  POST /v1/render   render a scene document (?format=svg|png|pdf|json|txt)
  POST /v1/layout   return the resolved frame as JSON
  POST /v1/graph    return the anchor reference graph (?format=dot|svg)
  GET  /healthz     liveness probe

The request body is a scene document; its Content-Type selects the decoder
(application/toml, application/yaml or application/json). The server stops
gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe starts the service and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg := c.config()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, serveKeyPrefix), c.Logger)
	defer runner.Close()

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithLimits(server.Limits{
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxDepth:       cfg.Layout.MaxDepth,
			Width:          cfg.Layout.Width,
			Height:         cfg.Layout.Height,
		}),
	)

	printSuccess("Serving on %s", StyleLink.Render(addr))
	printKeyValue("Max body", fmt.Sprintf("%d bytes", cfg.Server.MaxBodyBytes))
	printKeyValue("Timeout", cfg.Server.RequestTimeout.String())
	printNewline()

	err = srv.ListenAndServe(ctx, addr)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printInfo("Server stopped")
	return nil
}
