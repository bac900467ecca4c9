package pack

import "math"

// Disc is a bare circle used by the enclosing-circle search.
type Disc struct {
	X, Y, R float64
}

// Enclose returns the smallest circle enclosing every circle.
func Enclose(circles []*Circle) Disc {
	return encloseRandom(circles, NewRandom())
}

func encloseRandom(circles []*Circle, rnd *Random) Disc {
	discs := make([]Disc, len(circles))
	for i, c := range circles {
		discs[i] = Disc{c.X, c.Y, c.R}
	}
	shuffle(discs, rnd)

	var (
		basis []Disc
		e     Disc
		have  bool
	)
	for i := 0; i < len(discs); {
		p := discs[i]
		if have && enclosesWeak(e, p) {
			i++
			continue
		}
		basis = extendBasis(basis, p)
		if basis == nil {
			return boundingDisc(discs)
		}
		e, have = encloseBasis(basis), true
		if math.IsNaN(e.X) || math.IsNaN(e.Y) || math.IsNaN(e.R) {
			return boundingDisc(discs)
		}
		i = 0
	}
	return e
}

func shuffle(d []Disc, rnd *Random) {
	for m := len(d); m > 0; {
		i := int(rnd.Float64() * float64(m))
		m--
		d[m], d[i] = d[i], d[m]
	}
}

func extendBasis(b []Disc, p Disc) []Disc {
	if enclosesWeakAll(p, b) {
		return []Disc{p}
	}

	for i := range b {
		if enclosesNot(p, b[i]) && enclosesWeakAll(encloseBasis2(b[i], p), b) {
			return []Disc{b[i], p}
		}
	}

	for i := 0; i < len(b)-1; i++ {
		for j := i + 1; j < len(b); j++ {
			if enclosesNot(encloseBasis2(b[i], b[j]), p) &&
				enclosesNot(encloseBasis2(b[i], p), b[j]) &&
				enclosesNot(encloseBasis2(b[j], p), b[i]) &&
				enclosesWeakAll(encloseBasis3(b[i], b[j], p), b) {
				return []Disc{b[i], b[j], p}
			}
		}
	}
	// Only reachable through floating point degeneracy.
	return nil
}

// boundingDisc is a conservative enclosure around the centroid.
func boundingDisc(d []Disc) Disc {
	var cx, cy float64
	for _, c := range d {
		cx += c.X
		cy += c.Y
	}
	cx /= float64(len(d))
	cy /= float64(len(d))
	var r float64
	for _, c := range d {
		r = math.Max(r, math.Hypot(c.X-cx, c.Y-cy)+c.R)
	}
	return Disc{cx, cy, r}
}

func enclosesNot(a, b Disc) bool {
	dr := a.R - b.R
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr < 0 || dr*dr < dx*dx+dy*dy
}

func enclosesWeak(a, b Disc) bool {
	dr := a.R - b.R + math.Max(math.Max(a.R, b.R), 1)*1e-9
	dx, dy := b.X-a.X, b.Y-a.Y
	return dr > 0 && dr*dr > dx*dx+dy*dy
}

func enclosesWeakAll(a Disc, b []Disc) bool {
	for _, d := range b {
		if !enclosesWeak(a, d) {
			return false
		}
	}
	return true
}

func encloseBasis(b []Disc) Disc {
	switch len(b) {
	case 1:
		return b[0]
	case 2:
		return encloseBasis2(b[0], b[1])
	default:
		return encloseBasis3(b[0], b[1], b[2])
	}
}

func encloseBasis2(a, b Disc) Disc {
	x21, y21, r21 := b.X-a.X, b.Y-a.Y, b.R-a.R
	l := math.Sqrt(x21*x21 + y21*y21)
	return Disc{
		X: (a.X + b.X + x21/l*r21) / 2,
		Y: (a.Y + b.Y + y21/l*r21) / 2,
		R: (l + a.R + b.R) / 2,
	}
}

func encloseBasis3(a, b, c Disc) Disc {
	x1, y1, r1 := a.X, a.Y, a.R
	x2, y2, r2 := b.X, b.Y, b.R
	x3, y3, r3 := c.X, c.Y, c.R

	a2, a3 := x1-x2, x1-x3
	b2, b3 := y1-y2, y1-y3
	c2, c3 := r2-r1, r3-r1
	d1 := x1*x1 + y1*y1 - r1*r1
	d2 := d1 - x2*x2 - y2*y2 + r2*r2
	d3 := d1 - x3*x3 - y3*y3 + r3*r3
	ab := a3*b2 - a2*b3
	xa := (b2*d3-b3*d2)/(ab*2) - x1
	xb := (b3*c2 - b2*c3) / ab
	ya := (a3*d2-a2*d3)/(ab*2) - y1
	yb := (a2*c3 - a3*c2) / ab
	A := xb*xb + yb*yb - 1
	B := 2 * (r1 + xa*xb + ya*yb)
	C := xa*xa + ya*ya - r1*r1

	var r float64
	if math.Abs(A) > 1e-6 {
		r = -(B + math.Sqrt(B*B-4*A*C)) / (2 * A)
	} else {
		r = -(C / B)
	}
	return Disc{X: x1 + xa + xb*r, Y: y1 + ya + yb*r, R: r}
}
