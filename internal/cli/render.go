package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/pipeline"
)

// renderCommand creates the render command: load, lay out and render in one go.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf      layoutFlags
		sf      sourceFlags
		formats string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "render [revisions.json]",
		Short: "Render every revision as a frame",
		Long: `Render every revision as a frame.

Reads revisions from a file (produced by 'fetch') or directly from a
repository with --git or --github, computes the timeline and writes one
file per revision and format into the output directory.

Frames and rendered files are cached, so re-running after appending a
revision only computes the new frame.

Examples:
  treerings render revisions.json -f svg,png -o frames
  treerings render --git . --limit 5 --title`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.mergeConfig(cmd, &lf.opts, formats)
			if err := lf.opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), sf.source(args), lf, outDir)
		},
	}

	c.bindLayoutFlags(cmd, &lf)
	bindRenderFlags(cmd, &lf.opts, &formats)
	bindSourceFlags(cmd, &sf)
	cmd.Flags().StringVarP(&outDir, "output", "o", "frames", "output directory")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, src pipeline.Source, lf layoutFlags, outDir string) error {
	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	revs, err := pipeline.Load(ctx, runner.Cache, src, lf.opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d revisions...", len(revs)))
	spinner.Start()
	ctx = trackFrames(ctx, spinner, "Laying out")

	result, err := runner.Execute(ctx, revs, lf.opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(outDir, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d frames", len(result.Frames))
	for _, p := range paths {
		printFile(p)
	}
	printFrameStats(result.Stats)
	return nil
}

// writeArtifacts writes every artifact as <dir>/<tag>.<format> and
// returns the written paths in order.
func writeArtifacts(dir string, artifacts map[string]map[string][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var paths []string
	for tag, byFormat := range artifacts {
		for format, data := range byFormat {
			p := filepath.Join(dir, fileName(tag)+"."+format)
			if err := os.WriteFile(p, data, 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", p, err)
			}
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// fileName makes a tag usable as a file name. Tags like "release/1.0"
// become "release_1.0".
func fileName(tag string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	if s := r.Replace(tag); s != "" && s != "." && s != ".." {
		return s
	}
	return "untagged"
}
