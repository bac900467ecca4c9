package engine

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/pack"
	"github.com/matzehuels/treerings/pkg/reflow"
)

// Frame is the finished layout of one revision.
type Frame struct {
	Tag       string
	Root      *pack.Circle
	Nodes     []*pack.Circle // breadth-first, capped at MaxNodes
	Width     float64        // reflow canvas
	Height    float64
	MaxDepth  int
	Truncated int // nodes dropped by the cap
	Stats     Stats
}

// Stats collects per-stage counters of one frame.
type Stats struct {
	Hierarchy hierarchy.Stats
	Reflow    reflow.Stats
	Duration  time.Duration
}

// Visible returns the nodes a renderer draws: Nodes without the root, the
// loose-file bucket, and anything deeper than MaxDepth.
func (f *Frame) Visible() []*pack.Circle {
	out := make([]*pack.Circle, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.Depth == 0 || n.Depth > f.MaxDepth || n.Node.IsBucket() {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Layout is the serializable form of a [Frame].
type Layout struct {
	Tag       string       `json:"tag"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	MaxDepth  int          `json:"max_depth"`
	Truncated int          `json:"truncated,omitempty"`
	Nodes     []NodeLayout `json:"nodes"`
}

// NodeLayout is one positioned circle.
type NodeLayout struct {
	Path      string  `json:"path"`
	Name      string  `json:"name"`
	Parent    string  `json:"parent,omitempty"`
	Depth     int     `json:"depth"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	R         float64 `json:"r"`
	Weight    float64 `json:"weight"`
	SortKey   float64 `json:"sort_key"`
	Color     string  `json:"color,omitempty"`
	Extension string  `json:"extension,omitempty"`
	Leaf      bool    `json:"leaf,omitempty"`
	Bucket    bool    `json:"bucket,omitempty"`
}

// Export flattens the frame's nodes, parents before children.
func (f *Frame) Export() Layout {
	l := Layout{
		Tag:       f.Tag,
		Width:     f.Width,
		Height:    f.Height,
		MaxDepth:  f.MaxDepth,
		Truncated: f.Truncated,
		Nodes:     make([]NodeLayout, len(f.Nodes)),
	}
	for i, c := range f.Nodes {
		n := NodeLayout{
			Path:      c.Path(),
			Name:      c.Node.Name,
			Depth:     c.Depth,
			X:         c.X,
			Y:         c.Y,
			R:         c.R,
			Weight:    c.Value,
			SortKey:   c.Node.SortKey,
			Color:     c.Node.Color,
			Extension: c.Node.Extension,
			Leaf:      c.IsLeaf(),
			Bucket:    c.Node.IsBucket(),
		}
		if c.Parent != nil {
			n.Parent = c.Parent.Path()
		}
		l.Nodes[i] = n
	}
	return l
}

// MarshalLayout encodes l as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a layout written by [MarshalLayout].
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	err := json.Unmarshal(data, &l)
	return l, err
}
