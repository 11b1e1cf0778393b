package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/osumercury/badgemaker/pkg/buildinfo"
	"github.com/osumercury/badgemaker/pkg/cache"
	"github.com/osumercury/badgemaker/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "badgemaker"

	// cacheURLEnv names a Redis URL used instead of the local cache directory.
	cacheURLEnv = "BADGEMAKER_CACHE_URL"
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
		Use:   appName,
		Short: "Badgemaker renders name badges and certificates from a roster",
		Long: `Badgemaker renders a roster of teams or people into printable badges and
certificates. Badges are drawn by a configurable renderer and exported as
individual images or packed onto the pages of a PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.propertiesCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the raster cache backend of a command.
type cacheFlags struct {
	noCache bool
	url     string // Redis URL; empty uses BADGEMAKER_CACHE_URL or the cache directory
	scope   string // key prefix for sharing one backend between events
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the raster cache")
	cmd.Flags().StringVar(&f.url, "cache-url", "", "Redis URL for a shared raster cache")
	cmd.Flags().StringVar(&f.scope, "cache-scope", "", "prefix for cache keys (e.g. an event name)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	store, err := newCache(ctx, flags.noCache, flags.url)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if flags.scope != "" {
		keyer = cache.NewScopedKeyer(nil, flags.scope+":")
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func newCache(ctx context.Context, noCache bool, cacheURL string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cacheURL == "" {
		cacheURL = os.Getenv(cacheURLEnv)
	}
	if cacheURL != "" {
		rc, err := cache.NewRedisCache(ctx, cacheURL)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/badgemaker/).
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
