package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/layoutcache"
	"github.com/matzehuels/treerings/pkg/pack"
	"github.com/matzehuels/treerings/pkg/palette"
	"github.com/matzehuels/treerings/pkg/reflow"
	"github.com/matzehuels/treerings/pkg/revision"
)

// DefaultMaxNodes caps the nodes handed to the renderer per frame.
const DefaultMaxNodes = 8000

// ErrEmptyRevision is returned for revisions with nothing to lay out.
var ErrEmptyRevision = hierarchy.ErrEmptyRevision

// Options configures an [Engine].
type Options struct {
	Pack     pack.Options
	Reflow   reflow.Options
	MaxNodes int
	Encoding palette.Encoding
	Filter   *revision.Filter // nil keeps every entry
	Logger   *log.Logger      // nil discards
}

// DefaultOptions returns the canonical canvas, depth 10, 8000 nodes and
// the type color encoding.
func DefaultOptions() Options {
	return Options{
		Pack:     pack.DefaultOptions(),
		Reflow:   reflow.DefaultOptions(),
		MaxNodes: DefaultMaxNodes,
		Encoding: palette.EncodingType,
	}
}

// Engine lays out revisions. It holds no state between calls and is safe
// for concurrent use.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// New validates opts and returns an Engine. Zero fields take defaults.
func New(opts Options) (*Engine, error) {
	d := DefaultOptions()
	if opts.Pack.Width <= 0 || opts.Pack.Height <= 0 {
		opts.Pack = d.Pack
	}
	if opts.Reflow == (reflow.Options{}) {
		opts.Reflow = d.Reflow
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = d.MaxNodes
	}
	if opts.Encoding == "" {
		opts.Encoding = d.Encoding
	}
	if !opts.Encoding.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "unknown color encoding %q", opts.Encoding)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{opts: opts, logger: logger}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Layout computes one frame from rev, biased by prev (nil on the first
// frame). It returns the frame and the cache for the next call. On error
// the returned cache is prev.
func (e *Engine) Layout(rev revision.Revision, prev *layoutcache.Cache) (*Frame, *layoutcache.Cache, error) {
	start := time.Now()
	rev = e.opts.Filter.Apply(rev)

	colors, err := palette.ForEncoding(e.opts.Encoding, rev)
	if err != nil {
		return nil, prev, err
	}
	root, hs, err := hierarchy.Build(rev, hierarchy.Options{Colors: colors, Orders: prev})
	if err != nil {
		return nil, prev, err
	}

	packed := pack.Pack(root, e.opts.Pack)
	rs := reflow.Reflow(packed, prev, e.opts.Reflow)
	next := layoutcache.Snapshot(packed)

	// The cap trims output only. The snapshot above keeps every node.
	nodes := packed.Descendants()
	dropped := 0
	if len(nodes) > e.opts.MaxNodes {
		dropped = len(nodes) - e.opts.MaxNodes
		nodes = nodes[:e.opts.MaxNodes]
	}

	f := &Frame{
		Tag:       rev.Tag,
		Root:      packed,
		Nodes:     nodes,
		Width:     e.opts.Reflow.Width,
		Height:    e.opts.Reflow.Height,
		MaxDepth:  e.opts.Reflow.MaxDepth,
		Truncated: dropped,
		Stats: Stats{
			Hierarchy: hs,
			Reflow:    rs,
			Duration:  time.Since(start),
		},
	}
	if f.Width <= 0 {
		f.Width = reflow.DefaultOptions().Width
	}
	if f.Height <= 0 {
		f.Height = reflow.DefaultOptions().Height
	}
	if f.MaxDepth <= 0 {
		f.MaxDepth = reflow.DefaultMaxDepth
	}

	e.logger.Debug("laid out frame",
		"tag", rev.Tag,
		"nodes", hs.Nodes,
		"skipped", hs.Skipped,
		"groups", rs.Groups,
		"corrections", rs.Corrections,
		"duration", f.Stats.Duration)
	if dropped > 0 {
		e.logger.Warn("frame truncated", "tag", rev.Tag, "dropped", dropped)
	}
	return f, next, nil
}

// Timeline lays out revs in order, feeding each frame's cache into the
// next. Empty revisions are logged and skipped. It returns the frames and
// the final cache.
func (e *Engine) Timeline(ctx context.Context, revs []revision.Revision) ([]*Frame, *layoutcache.Cache, error) {
	return e.TimelineFrom(ctx, revs, nil)
}

// TimelineFrom is [Engine.Timeline] starting from an existing cache.
func (e *Engine) TimelineFrom(ctx context.Context, revs []revision.Revision, prev *layoutcache.Cache) ([]*Frame, *layoutcache.Cache, error) {
	frames := make([]*Frame, 0, len(revs))
	cache := prev
	for _, rev := range revs {
		if err := ctx.Err(); err != nil {
			return frames, cache, err
		}
		f, next, err := e.Layout(rev, cache)
		if errors.Is(err, errors.ErrCodeEmptyRevision) {
			e.logger.Warn("skipping empty revision", "tag", rev.Tag)
			continue
		}
		if err != nil {
			return frames, cache, fmt.Errorf("layout %s: %w", rev.Tag, err)
		}
		frames = append(frames, f)
		cache = next
	}
	if len(frames) == 0 && len(revs) > 0 {
		return nil, cache, ErrEmptyRevision
	}
	return frames, cache, nil
}
