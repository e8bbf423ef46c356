// Package cli implements the ownerchart command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jsterling/ownerchart/internal/config"
	"github.com/jsterling/ownerchart/pkg/buildinfo"
	"github.com/jsterling/ownerchart/pkg/cache"
	"github.com/jsterling/ownerchart/pkg/history"
	"github.com/jsterling/ownerchart/pkg/ownership"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "ownerchart"

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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "ownerchart",
		Short:        "Ownerchart visualizes company ownership structures",
		Long:         `Ownerchart resolves a company's beneficial-ownership structure through a remote lookup service and renders it as a diagram and an expandable list, in the terminal or in the browser.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/ownerchart/config.toml)")

	// Register all subcommands
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the runtime configuration honoring the --config flag.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient creates an ownership client for CLI use.
func (c *CLI) newClient(ctx context.Context, cfg config.Config, noCache bool) (*ownership.Client, error) {
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		store = cache.NewNullCache()
	}
	client, err := ownership.NewClient(cfg.Backend.BaseURL, store)
	if err != nil {
		return nil, err
	}
	client.SetTimeout(cfg.Backend.Timeout())
	return client, nil
}

// newCache builds the cache backend the configuration asks for: Redis when an
// address is set, the file cache otherwise, a null cache when disabled.
func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || !cfg.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr})
	}
	dir, err := cfg.Cache.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newHistory builds the configured history store, or nil when history is
// disabled. A store that fails to open is reported but never fatal.
func (c *CLI) newHistory(ctx context.Context, cfg config.Config) history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	var (
		store history.Store
		err   error
	)
	if cfg.History.MongoURI != "" {
		store, err = history.NewMongoStore(ctx, cfg.History.MongoURI)
	} else {
		var path string
		if path, err = cfg.History.HistoryPath(); err == nil {
			store, err = history.NewFileStore(path)
		}
	}
	if err != nil {
		c.Logger.Warn("history unavailable", "err", err)
		return nil
	}
	return store
}
