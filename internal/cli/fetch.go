package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/revision"
)

// sourceFlags select where revisions come from when no file is given.
type sourceFlags struct {
	gitDir  string
	github  string
	tags    []string
	limit   int
	history bool
}

func bindSourceFlags(cmd *cobra.Command, sf *sourceFlags) {
	f := cmd.Flags()
	f.StringVar(&sf.gitDir, "git", "", "read tags from a local git repository")
	f.StringVar(&sf.github, "github", "", "read tags from a GitHub repository (owner/repo or URL)")
	f.StringSliceVar(&sf.tags, "tags", nil, "only these tags, in this order")
	f.IntVar(&sf.limit, "limit", 0, "keep only the newest N tags")
	f.BoolVar(&sf.history, "history", false, "attach commit history for the change encodings (--git only)")
	cmd.MarkFlagsMutuallyExclusive("git", "github")
}

// source combines an optional file argument with the source flags.
func (sf *sourceFlags) source(args []string) pipeline.Source {
	src := pipeline.Source{
		GitDir:  sf.gitDir,
		GitHub:  sf.github,
		Tags:    sf.tags,
		Limit:   sf.limit,
		History: sf.history,
	}
	if len(args) > 0 {
		src.File = args[0]
	}
	return src
}

// fetchCommand creates the fetch command that snapshots tagged trees.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		sf      sourceFlags
		output  string
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fetch (--git <dir> | --github <owner/repo>)",
		Short: "Write the file tree of every tag to a revisions file",
		Long: `Write the file tree of every tag to a revisions file.

The output is a JSON (or YAML, by extension) list of revisions that the
layout, render and watch commands read. GitHub responses are cached, set
GITHUB_TOKEN to raise the API rate limit.

Examples:
  treerings fetch --git . -o revisions.json
  treerings fetch --github d3/d3-shape --limit 10
  treerings fetch --git ../repo --history -o revisions.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := sf.source(nil)
			if src.GitDir == "" && src.GitHub == "" {
				return fmt.Errorf("one of --git or --github is required")
			}
			return c.runFetch(cmd.Context(), src, output, refresh, noCache)
		},
	}

	bindSourceFlags(cmd, &sf)
	cmd.Flags().StringVarP(&output, "output", "o", "revisions.json", "output file (.json, .yaml or - for stdout)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, src pipeline.Source, output string, refresh, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.FromConfig(c.conf())
	opts.Refresh = refresh
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Reading tags from "+src.String()+"...")
	spinner.Start()
	prog := newProgress(c.Logger)

	revs, err := pipeline.Load(ctx, runner.Cache, src, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()
	prog.done("read revisions", "count", len(revs), "source", src.String())

	if output == "-" {
		return revision.Encode(os.Stdout, revs, revision.FormatJSON)
	}
	if err := revision.WriteFile(output, revs); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	files := 0
	for _, r := range revs {
		files += r.Files()
	}
	printSuccess("Fetched %d revisions", len(revs))
	printFile(output)
	printDetail("%d files across all revisions", files)
	printNewline()
	printNextStep("Render", "treerings render "+output)
	return nil
}
