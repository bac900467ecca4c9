package reflow

import (
	"math"

	"github.com/matzehuels/treerings/pkg/pack"
)

const (
	settleRounds    = 60
	settleTolerance = 1e-9
)

func newBody(c *pack.Circle, pad float64) *body {
	b := &body{c: c, x: c.X, y: c.Y, ox: c.X, oy: c.Y, radius: c.R + LeafPadding}
	if !c.IsLeaf() {
		b.radius = c.R + pad
	}
	return b
}

// confine clamps bodies onto the canvas and, when parent is set, inside
// parent. It reports whether any body moved.
func (r *reflower) confine(bodies []*body, parent *pack.Circle) bool {
	w, h := r.opts.Width, r.opts.Height
	moved := false
	for _, b := range bodies {
		x := clamp(b.c.R, b.x, w-b.c.R)
		y := clamp(b.c.R, b.y, h-b.c.R)
		if parent != nil && parent.R > 0 {
			p := Contain(Point{parent.X, parent.Y}, parent.R, Point{x, y}, b.c.R, !b.c.IsLeaf())
			x, y = p.X, p.Y
		}
		if math.Abs(x-b.x) > settleTolerance || math.Abs(y-b.y) > settleTolerance {
			moved = true
		}
		b.x, b.y = x, y
	}
	return moved
}

// settle alternates [separate] and [reflower.confine] on final positions
// until neither moves a body. The last clamp of a tick can push siblings
// back into each other; this pass undoes that.
func (r *reflower) settle(bodies []*body, parent *pack.Circle) {
	for k := 0; k < settleRounds; k++ {
		moved := separate(bodies, r.rnd)
		if r.confine(bodies, parent) {
			moved = true
		}
		if !moved {
			return
		}
	}
}

// settleTree settles c's children in place, moving their subtrees along,
// then does the same one level down. Used for groups too small to simulate.
func (r *reflower) settleTree(c *pack.Circle) {
	if len(c.Children) == 0 {
		return
	}
	pad := PaddingScale(c.Children[0].Depth, r.opts.MaxDepth)
	bodies := make([]*body, len(c.Children))
	for i, ch := range c.Children {
		bodies[i] = newBody(ch, pad)
	}
	r.settle(bodies, c)
	for _, b := range bodies {
		b.c.Translate(b.x-b.c.X, b.y-b.c.Y)
		r.settleTree(b.c)
	}
}

// separate pushes every overlapping pair apart along the line between
// their centers until they sit at the sum of their collision radii. The
// move is split by squared radius, as in collide.
func separate(bodies []*body, rnd *pack.Random) bool {
	moved := false
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			r := a.radius + b.radius
			x, y := a.x-b.x, a.y-b.y
			l := math.Hypot(x, y)
			if r-l <= settleTolerance {
				continue
			}
			if l == 0 {
				x = (rnd.Float64() - 0.5) * 1e-6
				y = (rnd.Float64() - 0.5) * 1e-6
				l = math.Hypot(x, y)
			}
			k := (r - l) / l
			share := b.radius * b.radius / (a.radius*a.radius + b.radius*b.radius)
			a.x += x * k * share
			a.y += y * k * share
			b.x -= x * k * (1 - share)
			b.y -= y * k * (1 - share)
			moved = true
		}
	}
	return moved
}
