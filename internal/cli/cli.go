// Package cli implements the treerings command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/buildinfo"
	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/config"
	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "treerings"

	// redisKeyPrefix namespaces entries in a shared Redis.
	redisKeyPrefix = "treerings:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFiles   []string
	cfg        *config.Config
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
		Short: "Treerings animates how a repository's file tree grows",
		Long: `Treerings lays out every tagged revision of a repository as nested circles
and keeps circles that survive from one revision to the next in place, so a
sequence of frames shows the tree growing like the rings of a tree.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "load environment variables from these files (default: ./.env if present)")

	// Register all subcommands
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.timelineCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads .env files and the config file once per process.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	if err := config.LoadEnv(c.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// conf returns the loaded configuration, or the defaults before
// loadConfig has run (as in tests that call run functions directly).
func (c *CLI) conf() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.conf()
	ch, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Backend == config.CacheRedis && !noCache {
		keyer = cache.NewScopedKeyer(nil, redisKeyPrefix)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

// newCache opens the configured cache backend, optionally wrapped in
// zstd compression.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}

	var c cache.Cache
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		c = rc
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		c = fc
	}

	if cfg.Compress {
		return cache.NewCompressed(c)
	}
	return c, nil
}

// newStore opens the configured timeline store.
func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := dataDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(d, "timelines")
		}
		return store.NewFileStore(dir)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	default:
		return store.NewMemoryStore(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/treerings/).
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

// dataDir returns the data directory using XDG standard (~/.local/share/treerings/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the flags shared by every command that computes frames.
type layoutFlags struct {
	opts    pipeline.Options
	noCache bool
}

// bindLayoutFlags registers the layout flags with built-in defaults;
// mergeConfig later fills in values from the config file.
func (c *CLI) bindLayoutFlags(cmd *cobra.Command, lf *layoutFlags) {
	d := pipeline.FromConfig(config.Default())
	lf.opts = d

	f := cmd.Flags()
	f.Float64Var(&lf.opts.Width, "width", d.Width, "canvas width")
	f.Float64Var(&lf.opts.Height, "height", d.Height, "canvas height")
	f.IntVar(&lf.opts.MaxDepth, "max-depth", d.MaxDepth, "deepest level that is reflowed and drawn")
	f.IntVar(&lf.opts.MaxNodes, "max-nodes", d.MaxNodes, "maximum circles per frame")
	f.IntVar(&lf.opts.Iterations, "iterations", d.Iterations, "force simulation ticks per group")
	f.StringVarP(&lf.opts.Encoding, "encoding", "e", d.Encoding, "color encoding: type, number-of-changes, last-change")
	f.StringSliceVarP(&lf.opts.Exclude, "exclude", "x", nil, "exclude paths matching these globs (repeatable)")
	f.BoolVar(&lf.opts.Refresh, "refresh", false, "ignore cached frames and API responses")
	f.BoolVar(&lf.noCache, "no-cache", false, "disable caching")
}

// bindRenderFlags registers output flags.
func bindRenderFlags(cmd *cobra.Command, opts *pipeline.Options, formats *string) {
	d := pipeline.FromConfig(config.Default())

	f := cmd.Flags()
	f.StringVarP(formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	f.StringVarP(&opts.VizType, "type", "t", d.VizType, "visualization type: circles (default), nodelink, radial")
	f.Float64Var(&opts.MinRadius, "min-radius", d.MinRadius, "smallest circle radius that gets a label")
	f.StringSliceVar(&opts.Highlight, "highlight", nil, "paths to draw with a highlight stroke")
	f.BoolVar(&opts.HideLabels, "no-labels", false, "do not draw labels")
	f.BoolVar(&opts.Title, "title", false, "draw the revision tag above each frame")
	f.Float64Var(&opts.PNGScale, "scale", pipeline.DefaultPNGScale, "PNG scale factor")
}

// mergeConfig applies config file values to options whose flags were
// not set explicitly. Flags win over the file, the file over defaults.
func (c *CLI) mergeConfig(cmd *cobra.Command, opts *pipeline.Options, formats string) {
	fromCfg := pipeline.FromConfig(c.conf())
	changed := cmd.Flags().Changed

	if !changed("width") {
		opts.Width = fromCfg.Width
	}
	if !changed("height") {
		opts.Height = fromCfg.Height
	}
	opts.HeightRatio = fromCfg.HeightRatio
	if !changed("max-depth") {
		opts.MaxDepth = fromCfg.MaxDepth
	}
	if !changed("max-nodes") {
		opts.MaxNodes = fromCfg.MaxNodes
	}
	if !changed("iterations") {
		opts.Iterations = fromCfg.Iterations
	}
	if !changed("encoding") {
		opts.Encoding = fromCfg.Encoding
	}
	opts.Exclude = append(append([]string(nil), fromCfg.Exclude...), opts.Exclude...)
	if !changed("type") && cmd.Flags().Lookup("type") != nil {
		opts.VizType = fromCfg.VizType
	}
	if !changed("min-radius") && cmd.Flags().Lookup("min-radius") != nil {
		opts.MinRadius = fromCfg.MinRadius
	}
	if !changed("highlight") {
		opts.Highlight = fromCfg.Highlight
	}
	if !changed("no-labels") {
		opts.HideLabels = fromCfg.HideLabels
	}
	if formats != "" {
		opts.Formats = parseFormats(formats)
	} else if len(fromCfg.Formats) > 0 {
		opts.Formats = fromCfg.Formats
	}
	opts.GitHubToken = fromCfg.GitHubToken
	opts.Logger = c.Logger
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
