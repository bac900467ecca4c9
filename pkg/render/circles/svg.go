package circles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/treerings/pkg/engine"
)

// DefaultMinRadius hides file labels on smaller circles.
const DefaultMinRadius = 15.0

const (
	dirFill        = "#f4f4f4"
	dirStroke      = "#290819"
	leafStroke     = "#374151"
	dirLabelColor  = "#1f6b32"
	fileLabelColor = "#4b5563"
	titleHeight    = 40.0
)

const glowDefs = `  <defs>
    <filter id="glow" x="-50%" y="-50%" width="200%" height="200%">
      <feGaussianBlur stdDeviation="4" result="coloredBlur"/>
      <feMerge>
        <feMergeNode in="coloredBlur"/>
        <feMergeNode in="SourceGraphic"/>
      </feMerge>
    </filter>
  </defs>
`

type Option func(*renderer)

type renderer struct {
	minRadius   float64
	highlighted map[string]bool
	selected    string
	title       string
	labels      bool
}

// WithHighlight marks paths as changed in this frame.
func WithHighlight(paths ...string) Option {
	return func(r *renderer) {
		for _, p := range paths {
			r.highlighted[p] = true
		}
	}
}

// WithMinRadius sets the smallest radius that still gets a file label.
func WithMinRadius(radius float64) Option { return func(r *renderer) { r.minRadius = radius } }

// WithSelected outlines one path.
func WithSelected(path string) Option { return func(r *renderer) { r.selected = path } }

// WithTitle adds a heading, typically "name@tag".
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithoutLabels draws circles only.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

func newRenderer(opts ...Option) *renderer {
	r := &renderer{minRadius: DefaultMinRadius, highlighted: map[string]bool{}, labels: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderSVG draws l as a standalone SVG document.
func RenderSVG(l engine.Layout, opts ...Option) []byte {
	r := newRenderer(opts...)
	nodes := Visible(l)

	offset := 0.0
	if r.title != "" {
		offset = titleHeight
	}
	w, h := l.Width, l.Height+offset

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="monospace" overflow="visible">`+"\n",
		w, h, w, h)
	buf.WriteString(glowDefs)
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" font-size="24" font-weight="700">%s</text>`+"\n",
			w/2, titleHeight*0.7, escapeXML(r.title))
	}

	fmt.Fprintf(&buf, `  <g id="viz-scene" transform="translate(0, %.1f)">`+"\n", offset)
	for _, n := range nodes {
		r.renderCircle(&buf, n)
	}
	if r.labels {
		for _, n := range nodes {
			if !n.Leaf && n.Depth != l.MaxDepth {
				renderDirLabel(&buf, n)
			}
		}
		for _, n := range nodes {
			if n.Leaf {
				r.renderFileLabel(&buf, n)
			}
		}
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// Visible returns the nodes of l that are drawn.
func Visible(l engine.Layout) []engine.NodeLayout {
	out := make([]engine.NodeLayout, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.Depth <= 0 || n.Depth > l.MaxDepth || n.Bucket {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (r *renderer) renderCircle(buf *bytes.Buffer, n engine.NodeLayout) {
	if !n.Leaf {
		fmt.Fprintf(buf, `    <circle class="dir" data-path="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-opacity="0.3" stroke-width="1" opacity="0.5"/>`+"\n",
			escapeXML(n.Path), n.X, n.Y, n.R, dirFill, dirStroke)
		return
	}
	width := 1
	if n.Path == r.selected {
		width = 3
	}
	filter := ""
	if r.highlighted[n.Path] {
		filter = ` filter="url(#glow)"`
	}
	fmt.Fprintf(buf, `    <circle class="file" data-path="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%d" opacity="0.8"%s/>`+"\n",
		escapeXML(n.Path), n.X, n.Y, n.R, escapeXML(n.Color), leafStroke, width, filter)
}

func renderDirLabel(buf *bytes.Buffer, n engine.NodeLayout) {
	if float64(len([]rune(n.Name))) > n.R*0.5 {
		return
	}
	limit := 100
	if n.R < 30 {
		limit = int(math.Floor(n.R/2.7)) + 3
	}
	size := math.Max(math.Floor(n.R/5), 20)

	fmt.Fprintf(buf, `    <text class="dir-label" x="%.2f" y="%.2f" dy=".35em" text-anchor="middle" font-size="%.0fpx" font-weight="700" fill="%s" opacity="0.7">%s/</text>`+"\n",
		n.X, n.Y, size, dirLabelColor, escapeXML(Truncate(n.Name, limit)))
	fmt.Fprintf(buf, `    <text class="dir-size" x="%.2f" y="%.2f" dy="3em" text-anchor="middle" font-size="14px" fill="%s" opacity="0.7">%s</text>`+"\n",
		n.X, n.Y, dirLabelColor, formatKB(n.Weight))
}

func (r *renderer) renderFileLabel(buf *bytes.Buffer, n engine.NodeLayout) {
	hl := r.highlighted[n.Path]
	if n.Path == r.selected && !hl {
		return
	}
	if n.R < r.minRadius {
		return
	}
	label := n.Name
	if !hl {
		label = Truncate(label, int(math.Floor(n.R/4))+3)
	}
	text := escapeXML(label)

	const common = `text-anchor="middle" dominant-baseline="middle" font-size="14px" font-weight="500" pointer-events="none"`
	fmt.Fprintf(buf, `    <g class="file-label" transform="translate(%.2f, %.2f)" fill="%s">`+"\n", n.X, n.Y, escapeXML(n.Color))
	fmt.Fprintf(buf, `      <text %s opacity="0.9" fill="%s" stroke="#ffffff" stroke-width="3" stroke-linejoin="round">%s</text>`+"\n", common, fileLabelColor, text)
	fmt.Fprintf(buf, `      <text %s opacity="1">%s</text>`+"\n", common, text)
	fmt.Fprintf(buf, `      <text %s opacity="0.5" fill="#110101" style="mix-blend-mode: color-burn">%s</text>`+"\n", common, text)
	buf.WriteString("    </g>\n")
}

// Truncate shortens s to n characters plus "..." when it is more than
// three characters too long.
func Truncate(s string, n int) string {
	rs := []rune(s)
	if n < 0 {
		n = 0
	}
	if len(rs) > n+3 {
		return string(rs[:n]) + "..."
	}
	return s
}

func formatKB(weight float64) string {
	kb := weight / 1024
	if kb < 10 {
		return fmt.Sprintf("%.1f KB", kb)
	}
	return fmt.Sprintf("%.0f KB", kb)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
