package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/internal/server"
	"github.com/matzehuels/treerings/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Timelines posted to /timelines are laid out, stored in the configured store
backend and served frame by frame as JSON, SVG, PNG or PDF. The cache and
store backends come from the [cache] and [store] config sections, so
several instances can share Redis and MongoDB.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.conf().Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg := c.conf()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	defaults := pipeline.FromConfig(cfg)
	srv := server.New(server.Options{
		Runner:         runner,
		Store:          st,
		Defaults:       defaults,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		Logger:         c.Logger,
	})

	printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
	printDetail("cache: %s  store: %s", cfg.Cache.Backend, cfg.Store.Backend)
	return srv.Run(ctx, addr)
}

// displayAddr turns ":8080" into "localhost:8080" for printing.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
