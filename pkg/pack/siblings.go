package pack

import "math"

// Siblings packs circles around the origin without overlap, using their
// R as given, and returns the radius of the enclosing circle. Positions are
// written to X and Y, relative to the enclosing circle's center.
func Siblings(circles []*Circle) float64 {
	return packSiblings(circles, NewRandom())
}

type frontNode struct {
	c          *Circle
	next, prev *frontNode
}

func packSiblings(circles []*Circle, rnd *Random) float64 {
	n := len(circles)
	if n == 0 {
		return 0
	}

	a := circles[0]
	a.X, a.Y = 0, 0
	if n == 1 {
		return a.R
	}

	b := circles[1]
	a.X, b.X, b.Y = -b.R, a.R, 0
	if n == 2 {
		return a.R + b.R
	}

	place(b, a, circles[2])

	// Front chain of the first three circles.
	fa, fb, fc := &frontNode{c: a}, &frontNode{c: b}, &frontNode{c: circles[2]}
	fa.next, fc.prev = fb, fb
	fb.next, fa.prev = fc, fc
	fc.next, fb.prev = fa, fa

pack:
	for i := 3; i < n; i++ {
		place(fa.c, fb.c, circles[i])
		fc = &frontNode{c: circles[i]}

		// Find the closest intersecting circle on the front chain, walking
		// both directions by accumulated radius.
		j, k := fb.next, fa.prev
		sj, sk := fb.c.R, fa.c.R
		for {
			if sj <= sk {
				if intersects(j.c, fc.c) {
					fb = j
					fa.next, fb.prev = fb, fa
					i--
					continue pack
				}
				sj += j.c.R
				j = j.next
			} else {
				if intersects(k.c, fc.c) {
					fa = k
					fa.next, fb.prev = fb, fa
					i--
					continue pack
				}
				sk += k.c.R
				k = k.prev
			}
			if j == k.next {
				break
			}
		}

		// Insert between a and b.
		fc.prev, fc.next = fa, fb
		fa.next = fc
		fb.prev = fc
		fb = fc

		// Pick the pair closest to the centroid as the new (a, b).
		best := score(fa)
		for fc = fc.next; fc != fb; fc = fc.next {
			if s := score(fc); s < best {
				fa, best = fc, s
			}
		}
		fb = fa.next
	}

	front := []*Circle{fb.c}
	for f := fb.next; f != fb; f = f.next {
		front = append(front, f.c)
	}
	e := encloseRandom(front, rnd)

	for _, c := range circles {
		c.X -= e.X
		c.Y -= e.Y
	}
	return e.R
}

// place positions c tangent to both a and b.
func place(b, a, c *Circle) {
	dx, dy := b.X-a.X, b.Y-a.Y
	d2 := dx*dx + dy*dy
	if d2 == 0 {
		c.X = a.X + c.R
		c.Y = a.Y
		return
	}

	a2 := (a.R + c.R) * (a.R + c.R)
	b2 := (b.R + c.R) * (b.R + c.R)
	if a2 > b2 {
		x := (d2 + b2 - a2) / (2 * d2)
		y := math.Sqrt(math.Max(0, b2/d2-x*x))
		c.X = b.X - x*dx - y*dy
		c.Y = b.Y - x*dy + y*dx
	} else {
		x := (d2 + a2 - b2) / (2 * d2)
		y := math.Sqrt(math.Max(0, a2/d2-x*x))
		c.X = a.X + x*dx - y*dy
		c.Y = a.Y + x*dy + y*dx
	}
}

func intersects(a, b *Circle) bool {
	dr := a.R + b.R - 1e-6
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

// score is the squared distance from the origin to the weighted midpoint
// of n and its successor.
func score(n *frontNode) float64 {
	a, b := n.c, n.next.c
	ab := a.R + b.R
	if ab == 0 {
		return a.X*a.X + a.Y*a.Y
	}
	dx := (a.X*b.R + b.X*a.R) / ab
	dy := (a.Y*b.R + b.Y*a.R) / ab
	return dx*dx + dy*dy
}
