package reflow

import (
	"math"

	"github.com/matzehuels/treerings/pkg/pack"
)

// Simulation constants.
const (
	alphaMin        = 0.001
	velocityDecay   = 0.6
	collideRounds   = 8
	collideStrength = 1.0
)

var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

// body is one circle's working state during a group simulation.
type body struct {
	c      *pack.Circle
	x, y   float64
	vx, vy float64
	ox, oy float64 // packed position
	radius float64 // collision radius
}

// pull is a positional force on one axis: v += (target - pos) * strength * alpha.
type pull struct {
	target   []float64
	strength []float64
	vertical bool
}

type simulation struct {
	bodies []*body
	pulls  []pull
	alpha  float64
	rnd    *pack.Random
}

func (s *simulation) tick() {
	s.alpha += (0 - s.alpha) * alphaDecay
	for _, p := range s.pulls {
		for i, b := range s.bodies {
			if p.strength[i] == 0 {
				continue
			}
			if p.vertical {
				b.vy += (p.target[i] - b.y) * p.strength[i] * s.alpha
			} else {
				b.vx += (p.target[i] - b.x) * p.strength[i] * s.alpha
			}
		}
	}
	s.collide()
	for _, b := range s.bodies {
		b.vx *= velocityDecay
		b.x += b.vx
		b.vy *= velocityDecay
		b.y += b.vy
	}
}

// collide separates overlapping pairs by adjusting velocities, splitting
// each correction by squared radius so larger circles move less.
func (s *simulation) collide() {
	n := len(s.bodies)
	for k := 0; k < collideRounds; k++ {
		for i := 0; i < n; i++ {
			a := s.bodies[i]
			ri := a.radius
			ri2 := ri * ri
			xi, yi := a.x+a.vx, a.y+a.vy
			for j := i + 1; j < n; j++ {
				b := s.bodies[j]
				rj := b.radius
				r := ri + rj
				x := xi - b.x - b.vx
				y := yi - b.y - b.vy
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = s.jiggle()
					l += x * x
				}
				if y == 0 {
					y = s.jiggle()
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * collideStrength
				x *= l
				y *= l
				share := rj * rj / (ri2 + rj*rj)
				a.vx += x * share
				a.vy += y * share
				b.vx -= x * (1 - share)
				b.vy -= y * (1 - share)
			}
		}
	}
}

func (s *simulation) jiggle() float64 {
	return (s.rnd.Float64() - 0.5) * 1e-6
}
