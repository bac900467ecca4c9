package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/palette"
	"github.com/matzehuels/treerings/pkg/render/circles"
	"github.com/matzehuels/treerings/pkg/render/nodelink"
	"github.com/matzehuels/treerings/pkg/revision"
)

// RenderFrame generates output artifacts for one frame in the requested
// formats. It does not touch the cache; see [Runner.Render].
func RenderFrame(ctx context.Context, f Frame, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(ctx, f, opts)
	}
	return renderCircles(ctx, f, opts)
}

func renderCircles(ctx context.Context, f Frame, opts Options) (map[string][]byte, error) {
	copts := circleOptions(f.Tag, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = circles.RenderSVG(f.Layout, copts...)
		case FormatPNG:
			data, err = circles.RenderPNG(ctx, f.Layout, opts.PNGScale, copts...)
		case FormatPDF:
			data, err = circles.RenderPDF(ctx, f.Layout, copts...)
		case FormatJSON:
			data, err = circles.RenderJSON(f.Layout)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func circleOptions(tag string, opts Options) []circles.Option {
	copts := []circles.Option{circles.WithMinRadius(opts.MinRadius)}
	if len(opts.Highlight) > 0 {
		copts = append(copts, circles.WithHighlight(opts.Highlight...))
	}
	if opts.HideLabels {
		copts = append(copts, circles.WithoutLabels())
	}
	if opts.Title {
		copts = append(copts, circles.WithTitle(tag))
	}
	return copts
}

// renderNodelink draws the normalized tree of the frame's revision as a
// node-link diagram, ranked or radial. JSON output is the circle layout
// either way.
func renderNodelink(ctx context.Context, f Frame, opts Options) (map[string][]byte, error) {
	dot, err := FrameDOT(f, opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatSVG, FormatPNG, FormatPDF:
			data, err = nodelink.Render(ctx, dot, format, opts.PNGScale)
		case FormatJSON:
			data, err = circles.RenderJSON(f.Layout)
		default:
			return nil, fmt.Errorf("unsupported nodelink format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// FrameDOT rebuilds the frame's tree and returns it in Graphviz DOT
// format. Sort keys are not carried over, so sibling order is the
// first-frame order.
func FrameDOT(f Frame, opts Options) (string, error) {
	filter, err := revision.NewFilter(opts.Exclude...)
	if err != nil {
		return "", err
	}
	rev := filter.Apply(f.Revision)

	colors, err := palette.ForEncoding(palette.Encoding(opts.Encoding), rev)
	if err != nil {
		return "", err
	}
	root, _, err := hierarchy.Build(rev, hierarchy.Options{Colors: colors})
	if err != nil {
		return "", err
	}
	return nodelink.ToDOT(root, nodelink.Options{
		Detailed: !opts.HideLabels,
		MaxDepth: opts.MaxDepth,
		Radial:   opts.VizType == VizTypeRadial,
	}), nil
}
