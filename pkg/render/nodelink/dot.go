package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds weight and sort key to node labels.
	// When false, only the node name is shown.
	Detailed bool

	// MaxDepth omits nodes below this depth. Zero draws everything.
	MaxDepth int

	// Radial lays the tree out in concentric rings around the root
	// (Graphviz twopi) instead of left-to-right ranks.
	Radial bool
}

const (
	bucketStyle = `style="rounded,filled,dashed", fillcolor=lightgrey`
	nodeDefault = `shape=box, style="rounded,filled", fillcolor=white, fontname=monospace, fontsize=14, margin="0.2,0.1"`
)

// ToDOT converts a normalized tree to Graphviz DOT format, one box per
// node and one edge per parent-child link. The loose-file bucket is drawn
// dashed and grey.
func ToDOT(root *hierarchy.Node, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	writeGraphAttrs(&b, opts.Radial)
	fmt.Fprintf(&b, "  node [%s];\n\n", nodeDefault)
	if root == nil {
		b.WriteString("}\n")
		return b.String()
	}

	var edges strings.Builder
	root.Walk(func(n *hierarchy.Node, depth int) bool {
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return false
		}
		id := nodeID(n)
		fmt.Fprintf(&b, "  %q [%s];\n", id, attrs(n, opts.Detailed))
		if opts.MaxDepth > 0 && depth == opts.MaxDepth {
			return true
		}
		for _, ch := range n.Children {
			fmt.Fprintf(&edges, "  %q -> %q;\n", id, nodeID(ch))
		}
		return true
	})

	b.WriteString("\n")
	b.WriteString(edges.String())
	b.WriteString("}\n")
	return b.String()
}

func writeGraphAttrs(b *strings.Builder, radial bool) {
	if radial {
		b.WriteString("  layout=twopi;\n  root=\"/\";\n  ranksep=1.2;\n  overlap=false;\n")
	} else {
		b.WriteString("  rankdir=LR;\n  ranksep=0.5;\n  nodesep=0.2;\n")
	}
	b.WriteString("  bgcolor=\"transparent\";\n")
}

// nodeID is the node's path; the root has the empty path and is drawn as "/".
func nodeID(n *hierarchy.Node) string {
	if n.Path == "" {
		return "/"
	}
	return n.Path
}

func label(n *hierarchy.Node, detailed bool) string {
	var name string
	switch {
	case n.Path == "":
		name = "/"
	case n.IsLeaf():
		name = n.Name
	default:
		name = n.Name + "/"
	}
	if !detailed {
		return name
	}
	lines := []string{
		name,
		"weight: " + strconv.FormatFloat(n.Weight, 'f', -1, 64),
		"sort: " + strconv.FormatFloat(n.SortKey, 'f', -1, 64),
	}
	if n.Extension != "" {
		lines = append(lines, "ext: "+n.Extension)
	}
	return strings.Join(lines, "\n")
}

func attrs(n *hierarchy.Node, detailed bool) string {
	a := fmt.Sprintf("label=%q", label(n, detailed))
	switch {
	case n.IsBucket():
		a += ", " + bucketStyle
	case n.IsLeaf() && n.Color != "":
		a += fmt.Sprintf(", fillcolor=%q", n.Color)
	}
	return a
}

// Render lays out a DOT graph with Graphviz and returns it in the given
// format: "svg", "png" (scaled by scale) or "pdf". Raster and print
// output go through [render.Convert].
func Render(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil || format == render.FormatSVG {
		return svg, err
	}
	return render.Convert(ctx, svg, format, scale)
}

// RenderSVG renders a DOT graph to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	var out bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &out); err != nil {
		return nil, fmt.Errorf("graphviz render: %w", err)
	}
	return fitViewBox(out.Bytes()), nil
}

var (
	rootTagRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// fitViewBox replaces Graphviz's point-sized root element with one whose
// viewBox starts at the origin and whose pixel size matches it, so the
// diagram scales like the circle views.
func fitViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, errW := strconv.ParseFloat(string(m[3]), 64)
	h, errH := strconv.ParseFloat(string(m[4]), 64)
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return rootTagRe.ReplaceAll(svg, []byte(root))
}
