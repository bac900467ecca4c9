package reflow

import (
	"github.com/matzehuels/treerings/pkg/pack"
)

// Defaults.
const (
	DefaultIterations   = 280
	DefaultMaxDepth     = 10
	DefaultRecurseAbove = 4 // directories with more children reflow their own group

	centerStrength   = 0.01
	centerMaxDepth   = 2
	parentXStrength  = 0.3
	parentYStrength  = 0.8
	cachedStrength   = 0.5
	uncachedStrength = 0.3
)

// Positions looks up where a path was drawn in the previous frame.
type Positions interface {
	Position(path string) (x, y float64, ok bool)
}

// Options configures [Reflow].
type Options struct {
	Width, Height float64 // clamp canvas
	MaxDepth      int
	Iterations    int
	RecurseAbove  int
}

// DefaultOptions uses a 1000 x 1000 canvas, depth 10 and 280 ticks.
func DefaultOptions() Options {
	return Options{
		Width:        pack.DefaultWidth,
		Height:       pack.DefaultHeight,
		MaxDepth:     DefaultMaxDepth,
		Iterations:   DefaultIterations,
		RecurseAbove: DefaultRecurseAbove,
	}
}

// Stats counts the work of one [Reflow].
type Stats struct {
	Groups      int // sibling groups simulated
	Ticks       int
	Corrections int // nodes moved by the final containment pass
}

// Reflow adjusts root's descendants in place toward prev. Radii are not
// touched. A nil prev behaves like an empty cache.
func Reflow(root *pack.Circle, prev Positions, opts Options) Stats {
	if root == nil {
		return Stats{}
	}
	opts = withDefaults(opts)
	r := &reflower{opts: opts, rnd: pack.NewRandom()}
	r.group(root.Children, lookup{base: prev}, nil)
	r.stats.Corrections = ContainAll(root)
	return r.stats
}

func withDefaults(o Options) Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.Iterations <= 0 {
		o.Iterations = d.Iterations
	}
	if o.RecurseAbove <= 0 {
		o.RecurseAbove = d.RecurseAbove
	}
	return o
}

type reflower struct {
	opts  Options
	rnd   *pack.Random
	stats Stats
}

// group simulates one sibling group. parent is nil for the top level.
func (r *reflower) group(items []*pack.Circle, cache lookup, parent *pack.Circle) {
	if len(items) == 0 {
		return
	}
	r.stats.Groups++
	w, h := r.opts.Width, r.opts.Height
	depth := items[0].Depth
	pad := PaddingScale(depth, r.opts.MaxDepth)

	n := len(items)
	sim := &simulation{alpha: 1, rnd: r.rnd, bodies: make([]*body, n)}
	cx, cy := make([]float64, n), make([]float64, n)
	cs := make([]float64, n)
	for i, c := range items {
		b := newBody(c, pad)
		cx[i], cy[i], cs[i] = w/2, h/2, uncachedStrength
		if x, y, ok := cache.Position(c.Path()); ok {
			b.x, b.y = x, y
			cx[i], cy[i], cs[i] = x, y, cachedStrength
		}
		sim.bodies[i] = b
	}

	center := 0.0
	if depth <= centerMaxDepth {
		center = centerStrength
	}
	sim.pulls = []pull{
		{target: fill(n, w/2), strength: fill(n, center)},
		{target: fill(n, h/2), strength: fill(n, center), vertical: true},
	}
	if parent != nil {
		sim.pulls = append(sim.pulls,
			pull{target: fill(n, parent.X), strength: fill(n, parentXStrength)},
			pull{target: fill(n, parent.Y), strength: fill(n, parentYStrength), vertical: true},
		)
	}
	sim.pulls = append(sim.pulls,
		pull{target: cx, strength: cs},
		pull{target: cy, strength: cs, vertical: true},
	)

	for t := 0; t < r.opts.Iterations; t++ {
		sim.tick()
		r.confine(sim.bodies, parent)
	}
	r.stats.Ticks += r.opts.Iterations
	r.settle(sim.bodies, parent)

	for _, b := range sim.bodies {
		b.c.X, b.c.Y = b.x, b.y
	}

	for _, b := range sim.bodies {
		c := b.c
		if c.IsLeaf() {
			continue
		}
		// Where the cache had this directory; its own final spot if unseen.
		cachedX, cachedY, ok := cache.Position(c.Path())
		if !ok {
			cachedX, cachedY = c.X, c.Y
		}

		for _, ch := range c.Children {
			ch.Translate(c.X-b.ox, c.Y-b.oy)
		}

		if len(c.Children) <= r.opts.RecurseAbove || c.Depth > r.opts.MaxDepth {
			r.settleTree(c)
			continue
		}
		dx, dy := c.X-cachedX, c.Y-cachedY
		shifted := lookup{base: cache, over: make(map[string]Point, len(c.Children))}
		for _, ch := range c.Children {
			if x, y, ok := cache.Position(ch.Path()); ok {
				shifted.over[ch.Path()] = Point{x + dx, y + dy}
			} else {
				shifted.over[ch.Path()] = Point{ch.X, ch.Y}
			}
		}
		r.group(c.Children, shifted, c)
	}
}

// ContainAll clamps every circle below depth 1 into its parent, moving
// its subtree along, and returns how many circles moved.
func ContainAll(root *pack.Circle) int {
	moved := 0
	var walk func(c *pack.Circle)
	walk = func(c *pack.Circle) {
		for _, ch := range c.Children {
			if c.Depth >= 1 {
				p := Contain(Point{c.X, c.Y}, c.R, Point{ch.X, ch.Y}, ch.R, !ch.IsLeaf())
				if p.X != ch.X || p.Y != ch.Y {
					ch.Translate(p.X-ch.X, p.Y-ch.Y)
					moved++
				}
			}
			walk(ch)
		}
	}
	walk(root)
	return moved
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// lookup layers per-group overrides on top of a base cache.
type lookup struct {
	base Positions
	over map[string]Point
}

func (l lookup) Position(path string) (float64, float64, bool) {
	if p, ok := l.over[path]; ok {
		return p.X, p.Y, true
	}
	if l.base == nil {
		return 0, 0, false
	}
	return l.base.Position(path)
}
