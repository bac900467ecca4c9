package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/layoutcache"
	"github.com/matzehuels/treerings/pkg/observability"
	"github.com/matzehuels/treerings/pkg/revision"
)

// Frame is one computed frame as the pipeline hands it around: the
// serializable layout plus the revision it came from.
type Frame struct {
	Tag      string
	Layout   engine.Layout
	Revision revision.Revision
	CacheHit bool
	Duration time.Duration
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Frames holds one entry per non-empty revision, in input order.
	Frames []Frame

	// Final is the layout cache after the last frame. Passing it to a
	// later run continues the timeline.
	Final *layoutcache.Cache

	// Artifacts contains rendered outputs keyed by [ArtifactNames], then format.
	Artifacts map[string]map[string][]byte

	// Stats contains timing and cache information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Revisions  int
	Frames     int
	Skipped    int // empty revisions
	FrameHits  int
	Nodes      int // nodes across all frames
	LayoutTime time.Duration
	RenderTime time.Duration
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// RenderConcurrency bounds parallel frame rendering; 0 means 4.
	RenderConcurrency int

	// TTL overrides the frame and artifact cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute lays out revs and renders every frame in opts.Formats.
func (r *Runner) Execute(ctx context.Context, revs []revision.Revision, opts Options) (*Result, error) {
	result, err := r.Timeline(ctx, revs, nil, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	artifacts, err := r.RenderAll(ctx, result.Frames, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered frames",
		"frames", len(result.Frames),
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Timeline computes one frame per revision starting from prev. Frames
// are looked up in the cache first; a hit also yields the cache for the
// next frame, so a fully cached timeline does no layout work at all.
func (r *Runner) Timeline(ctx context.Context, revs []revision.Revision, prev *layoutcache.Cache, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	eopts, err := opts.EngineOptions()
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(eopts)
	if err != nil {
		return nil, err
	}

	hooks := observability.Pipeline(ctx)
	hooks.OnTimelineStart(ctx, len(revs))
	start := time.Now()

	result := &Result{
		Frames: make([]Frame, 0, len(revs)),
		Stats:  Stats{Revisions: len(revs)},
	}
	current := prev
	for _, rev := range revs {
		if err := ctx.Err(); err != nil {
			hooks.OnTimelineComplete(ctx, len(result.Frames), time.Since(start), err)
			return nil, err
		}
		f, next, err := r.frame(ctx, eng, rev, current, opts)
		if errors.Is(err, errors.ErrCodeEmptyRevision) {
			r.Logger.Warn("skipping empty revision", "tag", rev.Tag)
			result.Stats.Skipped++
			continue
		}
		if err != nil {
			err = fmt.Errorf("layout %s: %w", rev.Tag, err)
			hooks.OnTimelineComplete(ctx, len(result.Frames), time.Since(start), err)
			return nil, err
		}
		result.Frames = append(result.Frames, f)
		result.Stats.Nodes += len(f.Layout.Nodes)
		if f.CacheHit {
			result.Stats.FrameHits++
		}
		current = next
	}
	result.Final = current
	result.Stats.Frames = len(result.Frames)
	result.Stats.LayoutTime = time.Since(start)

	if len(result.Frames) == 0 && len(revs) > 0 {
		hooks.OnTimelineComplete(ctx, 0, result.Stats.LayoutTime, engine.ErrEmptyRevision)
		return nil, engine.ErrEmptyRevision
	}
	hooks.OnTimelineComplete(ctx, len(result.Frames), result.Stats.LayoutTime, nil)

	r.Logger.Info("computed timeline",
		"frames", result.Stats.Frames,
		"cached", result.Stats.FrameHits,
		"skipped", result.Stats.Skipped,
		"duration", result.Stats.LayoutTime)
	return result, nil
}

func (r *Runner) frame(ctx context.Context, eng *engine.Engine, rev revision.Revision, prev *layoutcache.Cache, opts Options) (Frame, *layoutcache.Cache, error) {
	key := r.Keyer.FrameKey(revision.FingerprintHex(rev), digest(prev), opts.FrameKeyOpts())
	hooks := observability.Pipeline(ctx)
	hooks.OnFrameStart(ctx, rev.Tag, len(rev.Tree))
	start := time.Now()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if entry, err := decodeFrame(data); err == nil {
				// identical trees under another tag share an entry
				entry.Layout.Tag = rev.Tag
				observability.Cache(ctx).OnCacheHit(ctx, "frame")
				d := time.Since(start)
				hooks.OnFrameComplete(ctx, rev.Tag, len(entry.Layout.Nodes), d, nil)
				r.Logger.Debug("frame cache hit", "tag", rev.Tag)
				return Frame{Tag: rev.Tag, Layout: entry.Layout, Revision: rev, CacheHit: true, Duration: d}, entry.Cache, nil
			}
		}
		observability.Cache(ctx).OnCacheMiss(ctx, "frame")
	}

	f, next, err := eng.Layout(rev, prev)
	if err != nil {
		hooks.OnFrameComplete(ctx, rev.Tag, 0, time.Since(start), err)
		return Frame{}, prev, err
	}
	layout := f.Export()

	if data, err := encodeFrame(layout, next); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLFrame)); err != nil {
			r.Logger.Warn("cache frame", "tag", rev.Tag, "err", err)
		} else {
			observability.Cache(ctx).OnCacheSet(ctx, "frame", len(data))
		}
	}

	d := time.Since(start)
	hooks.OnFrameComplete(ctx, rev.Tag, len(layout.Nodes), d, nil)
	return Frame{Tag: rev.Tag, Layout: layout, Revision: rev, Duration: d}, next, nil
}

// RenderAll renders every frame concurrently. Output is keyed by
// [ArtifactNames], so frames sharing a tag do not overwrite each other.
func (r *Runner) RenderAll(ctx context.Context, frames []Frame, opts Options) (map[string]map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	n := r.RenderConcurrency
	if n <= 0 {
		n = 4
	}
	var mu sync.Mutex
	names := ArtifactNames(frames)
	out := make(map[string]map[string][]byte, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, f := range frames {
		g.Go(func() error {
			artifacts, _, err := r.RenderWithCacheInfo(gctx, f, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", names[i], err)
			}
			mu.Lock()
			out[names[i]] = artifacts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ArtifactNames returns one distinct name per frame, in frame order. A
// frame is named by its tag; untagged frames become "frame-<n>" (1-based)
// and repeats get a "~2", "~3", ... suffix.
func ArtifactNames(frames []Frame) []string {
	names := make([]string, len(frames))
	used := make(map[string]bool, len(frames))
	for i, f := range frames {
		base := f.Tag
		if base == "" {
			base = fmt.Sprintf("frame-%d", i+1)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s~%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// RenderWithCacheInfo renders one frame in every requested format and
// reports whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f Frame, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := engine.MarshalLayout(f.Layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, f.Tag))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache(ctx).OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache(ctx).OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline(ctx)
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	sub := opts
	sub.Formats = missing
	rendered, err := RenderFrame(ctx, f, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format, f.Tag))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache(ctx).OnCacheSet(ctx, "artifact", len(data))
		}
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, f Frame, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, f, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Layouts returns the frame layouts in order.
func (r *Result) Layouts() []engine.Layout {
	out := make([]engine.Layout, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = f.Layout
	}
	return out
}
