// Package cli implements the anchorlayout command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/internal/config"
	"github.com/matzehuels/anchorlayout/pkg/buildinfo"
	"github.com/matzehuels/anchorlayout/pkg/cache"
	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "anchorlayout"

	// defaultConcurrency bounds parallel renders when --jobs is not set.
	defaultConcurrency = 4
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Anchorlayout resolves anchor-constrained scenes into rectangles",
		Long: `Anchorlayout places rectangular elements on a canvas from anchor constraints.

Each element pins its edges or centres to the canvas or to other elements,
with an alignment and a pixel offset. A single pass resolves every element,
reports reference cycles and unknown targets, and renders the result as SVG,
PNG, PDF, JSON or plain text.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./anchorlayout.{toml,yaml,json})")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and applies its log level. --verbose wins
// over the configured level.
func (c *CLI) setup() error {
	var dirs []string
	if dir, err := configDir(); err == nil {
		dirs = append(dirs, dir)
	}
	cfg, err := config.Load(c.configPath, dirs...)
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	return nil
}

// config returns the loaded configuration, or the defaults when no command
// hook has run.
func (c *CLI) config() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend from the configuration. An unreachable
// Redis server degrades to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.config().Cache

	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.WithMaxTTL(store, cfg.TTL), nil
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return cache.WithMaxTTL(store, cfg.TTL), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/anchorlayout/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the per-user config directory searched after the
// working directory (~/.config/anchorlayout/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the pass settings shared by every command that resolves a
// scene.
type layoutFlags struct {
	width    int
	height   int
	maxDepth int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "canvas width override (default: from document)")
	cmd.Flags().IntVar(&f.height, "height", 0, "canvas height override (default: from document)")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "reference chain limit (default: from config)")
}

// baseOptions builds pipeline options for input from the configuration and
// the layout flags. Flags take precedence over config values.
func (c *CLI) baseOptions(input string, f layoutFlags) pipeline.Options {
	cfg := c.config()
	opts := pipeline.Options{
		Input:    input,
		Width:    f.width,
		Height:   f.height,
		MaxDepth: cfg.Layout.MaxDepth,
		FallbackCanvas: layout.Extent{
			Width:  cfg.Layout.Width,
			Height: cfg.Layout.Height,
		},
		Logger: c.Logger,
	}
	if f.maxDepth > 0 {
		opts.MaxDepth = f.maxDepth
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{pipeline.FormatSVG}, nil
	}
	return pipeline.ParseFormats(s)
}

// writeOutput writes data to path, or to w when path is "-" or empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
