package pack

// Random is a linear congruential generator (a=1664525, c=1013904223,
// m=2^32) seeded with 1. It makes every pack reproducible.
type Random struct {
	s uint32
}

// NewRandom returns a generator in its initial state.
func NewRandom() *Random { return &Random{s: 1} }

// Float64 returns the next value in [0, 1).
func (r *Random) Float64() float64 {
	r.s = 1664525*r.s + 1013904223
	return float64(r.s) / 4294967296
}
