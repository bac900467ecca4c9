package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/layoutcache"
	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/store"
)

// layoutCommand creates the layout command for computing a timeline.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		lf        layoutFlags
		sf        sourceFlags
		output    string
		continues string
	)

	cmd := &cobra.Command{
		Use:   "layout [revisions.json]",
		Short: "Compute the frames of a timeline",
		Long: `Compute the frames of a timeline.

The layout command takes a revisions file (produced by 'fetch') and writes a
timeline.json holding every frame's circles and the layout cache after the
last frame. The timeline can be rendered with 'visualize' or browsed with
'timeline'.

With --continue, layout starts from the cache stored in an earlier timeline,
so new revisions keep the positions of the frames before them.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.mergeConfig(cmd, &lf.opts, "")
			if err := lf.opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			src := sf.source(args)
			if output == "" {
				output = defaultTimelinePath(src)
			}
			return c.runLayout(cmd.Context(), src, lf, output, continues)
		},
	}

	c.bindLayoutFlags(cmd, &lf)
	bindSourceFlags(cmd, &sf)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.timeline.json)")
	cmd.Flags().StringVar(&continues, "continue", "", "continue from the layout cache of this timeline file")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, src pipeline.Source, lf layoutFlags, output, continues string) error {
	var prev *layoutcache.Cache
	if continues != "" {
		base, err := readTimeline(continues)
		if err != nil {
			return err
		}
		if prev, err = base.LayoutCache(); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	revs, err := pipeline.Load(ctx, runner.Cache, src, lf.opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d revisions...", len(revs)))
	spinner.Start()
	ctx = trackFrames(ctx, spinner, "Laying out")

	result, err := runner.Timeline(ctx, revs, prev, lf.opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	tl, err := store.FromLayouts(src.String(), result.Layouts(), result.Final)
	if err != nil {
		return err
	}
	if err := writeTimeline(output, tl); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(output)
	printFrameStats(result.Stats)
	printNewline()
	printNextStep("Render", "treerings visualize "+output)
	return nil
}

func defaultTimelinePath(src pipeline.Source) string {
	if src.File != "" {
		return strings.TrimSuffix(src.File, filepath.Ext(src.File)) + ".timeline.json"
	}
	return "timeline.json"
}

// readTimeline loads a timeline written by the layout command.
func readTimeline(path string) (*store.Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "timeline %s not found", path)
		}
		return nil, err
	}
	var tl store.Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse timeline %s", path)
	}
	return &tl, nil
}

func writeTimeline(path string, tl *store.Timeline) error {
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
