// Package nodelink renders the normalized tree as a node-link diagram.
//
// # Overview
//
// The circle view hides structure behind area: a collapsed chain or the
// loose-file bucket is hard to spot. This package draws the same tree as
// boxes and arrows using Graphviz, which makes the normalizer's output
// easy to inspect.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, nodelink.Options{MaxDepth: 3})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.Render(ctx, dot, "png", 2.0) // 2x scale
//
// # Options
//
//   - Detailed: node labels include weight, sort key and extension
//   - MaxDepth: omit deeper nodes
//   - Radial: rings around the root via Graphviz twopi
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
