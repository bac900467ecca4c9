package pack

import (
	"math"

	"github.com/matzehuels/treerings/pkg/hierarchy"
)

// Canvas defaults.
const (
	DefaultWidth       = 1000.0
	DefaultHeight      = 1000.0
	DefaultHeightRatio = 1.3 // packing area is Height * HeightRatio tall

	RootPadding  = 0.0
	LoosePadding = 20.0 // more than one leaf child
	DirPadding   = 10.0
)

// Options configures [Pack].
type Options struct {
	Width   float64
	Height  float64 // packing area height, already multiplied by the ratio
	Padding func(*Circle) float64
}

// DefaultOptions packs into 1000 x 1300 with [DefaultPadding].
func DefaultOptions() Options {
	return Options{
		Width:   DefaultWidth,
		Height:  DefaultHeight * DefaultHeightRatio,
		Padding: DefaultPadding,
	}
}

// DefaultPadding gives the root no padding, groups with more than one leaf
// child 20 units, and everything else 10.
func DefaultPadding(c *Circle) float64 {
	if c.Depth <= 0 {
		return RootPadding
	}
	leaves := 0
	for _, ch := range c.Children {
		if ch.IsLeaf() {
			leaves++
		}
	}
	if leaves > 1 {
		return LoosePadding
	}
	return DirPadding
}

// Pack lays out root and returns the packed tree. Children keep the order
// of root's sibling groups.
func Pack(root *hierarchy.Node, opts Options) *Circle {
	if root == nil {
		return nil
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight * DefaultHeightRatio
	}
	if opts.Padding == nil {
		opts.Padding = DefaultPadding
	}

	c := fromNode(root, nil, 0)
	rnd := NewRandom()
	c.X, c.Y = opts.Width/2, opts.Height/2

	c.EachBefore(func(n *Circle) {
		if n.IsLeaf() {
			n.R = math.Sqrt(math.Max(0, n.Value))
		}
	})
	side := math.Min(opts.Width, opts.Height)
	c.EachAfter(packChildren(func(*Circle) float64 { return 0 }, 1, rnd))
	c.EachAfter(packChildren(opts.Padding, c.R/side, rnd))
	if c.R > 0 {
		c.EachBefore(translateChild(side / (2 * c.R)))
	}
	return c
}

func packChildren(padding func(*Circle) float64, k float64, rnd *Random) func(*Circle) {
	return func(n *Circle) {
		if n.IsLeaf() {
			return
		}
		r := padding(n) * k
		if math.IsNaN(r) {
			r = 0
		}
		if r != 0 {
			for _, ch := range n.Children {
				ch.R += r
			}
		}
		e := packSiblings(n.Children, rnd)
		if r != 0 {
			for _, ch := range n.Children {
				ch.R -= r
			}
		}
		n.R = e + r
	}
}

func translateChild(k float64) func(*Circle) {
	return func(n *Circle) {
		n.R *= k
		if p := n.Parent; p != nil {
			n.X = p.X + k*n.X
			n.Y = p.Y + k*n.Y
		}
	}
}
