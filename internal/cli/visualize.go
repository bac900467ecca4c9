package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/store"
)

// visualizeCommand creates the visualize command for rendering a computed timeline.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		opts    pipeline.Options
		formats string
		outDir  string
		noCache bool
		frame   int
	)

	cmd := &cobra.Command{
		Use:   "visualize [timeline.json]",
		Short: "Render frames from a computed timeline",
		Long: `Render frames from a computed timeline.

The visualize command takes a timeline.json file (produced by 'layout') and
renders its frames to SVG, PNG, PDF or JSON. The timeline contains all
positions, so this step is purely about drawing.

Use 'render' as a shortcut to go directly from revisions to frames.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.mergeConfig(cmd, &opts, formats)
			if opts.IsNodelink() {
				return fmt.Errorf("%s diagrams need revisions; use 'render -t %s'", opts.VizType, opts.VizType)
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, outDir, noCache, frame)
		},
	}

	bindRenderFlags(cmd, &opts, &formats)
	cmd.Flags().StringVarP(&outDir, "output", "o", "frames", "output directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&frame, "frame", -1, "render only this frame index")

	return cmd
}

func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, outDir string, noCache bool, frame int) error {
	tl, err := readTimeline(input)
	if err != nil {
		return err
	}
	frames, err := timelineFrames(tl, frame)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d frames...", len(frames)))
	spinner.Start()

	artifacts, err := runner.RenderAll(ctx, frames, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(outDir, artifacts)
	if err != nil {
		return err
	}
	printSuccess("Rendered %d frames", len(frames))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// timelineFrames returns the stored frames, or only frame index when
// index >= 0.
func timelineFrames(tl *store.Timeline, index int) ([]pipeline.Frame, error) {
	if index >= 0 {
		l, err := tl.Frame(index)
		if err != nil {
			return nil, err
		}
		return []pipeline.Frame{{Tag: l.Tag, Layout: l}}, nil
	}
	frames := make([]pipeline.Frame, len(tl.Frames))
	for i, l := range tl.Frames {
		frames[i] = pipeline.Frame{Tag: l.Tag, Layout: l}
	}
	return frames, nil
}
