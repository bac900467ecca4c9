package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/pipeline"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// watchCommand creates the watch command that re-renders on every change.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		lf      layoutFlags
		formats string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "watch <revisions.json>",
		Short: "Re-render whenever the revisions file changes",
		Long: `Re-render whenever the revisions file changes.

Renders once, then watches the file and renders again after every save.
Unchanged frames come from the cache, so appending a revision only lays
out the new frame. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.mergeConfig(cmd, &lf.opts, formats)
			if err := lf.opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), args[0], lf, outDir)
		},
	}

	c.bindLayoutFlags(cmd, &lf)
	bindRenderFlags(cmd, &lf.opts, &formats)
	cmd.Flags().StringVarP(&outDir, "output", "o", "frames", "output directory")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, lf layoutFlags, outDir string) error {
	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	render := func() error {
		prog := newProgress(c.Logger)
		revs, err := pipeline.Load(ctx, runner.Cache, pipeline.Source{File: input}, lf.opts)
		if err != nil {
			return err
		}
		result, err := runner.Execute(ctx, revs, lf.opts)
		if err != nil {
			return err
		}
		if _, err := writeArtifacts(outDir, result.Artifacts); err != nil {
			return err
		}
		prog.done("rendered", "frames", result.Stats.Frames, "cached", result.Stats.FrameHits, "dir", outDir)
		return nil
	}

	if err := render(); err != nil {
		printWarning("Render failed: %s", errors.UserMessage(err))
	}
	printInfo("Watching %s (Ctrl+C to stop)", input)

	return watchFile(ctx, input, watchDebounce, c.Logger, func() {
		if err := render(); err != nil && ctx.Err() == nil {
			printWarning("Render failed: %s", errors.UserMessage(err))
		}
	})
}

// watchFile calls onChange after path is written, created or renamed
// into place, at most once per debounce window. It watches the parent
// directory because editors often replace files instead of writing them.
// It returns nil when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *log.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-fire:
			fire = nil
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
