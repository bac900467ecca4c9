package palette

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/revision"
)

// Scale maps a per-file metric onto a five-stop linear color ramp. The
// lower three stops are blank so only the top of the distribution stands out.
type Scale struct {
	metric func(*hierarchy.Node) float64
	lo, hi float64
	stops  [5]rgb
}

func (s *Scale) Known(ext string) bool { return Known(ext) }

// Color interpolates the node's metric. Directories stay blank.
func (s *Scale) Color(n *hierarchy.Node) string {
	if !n.IsLeaf() {
		return Blank
	}
	return s.At(s.metric(n)).String()
}

// At returns the clamped color for value v.
func (s *Scale) At(v float64) rgb {
	if s.hi <= s.lo {
		if v >= s.hi && s.hi > 0 {
			return s.stops[len(s.stops)-1]
		}
		return s.stops[0]
	}
	t := (v - s.lo) / (s.hi - s.lo)
	t = math.Max(0, math.Min(1, t))
	seg := t * float64(len(s.stops)-1)
	i := int(seg)
	if i >= len(s.stops)-1 {
		return s.stops[len(s.stops)-1]
	}
	return s.stops[i].lerp(s.stops[i+1], seg-float64(i))
}

// ByChanges colors files by how many commits touched them. The two most
// and least changed files are ignored when fitting the domain.
func ByChanges(rev revision.Revision) *Scale {
	var vals []float64
	for _, e := range rev.Tree {
		if !e.IsDir() {
			vals = append(vals, float64(len(e.Commits)))
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	if len(vals) > 4 {
		vals = vals[2 : len(vals)-2]
	}
	s := &Scale{metric: func(n *hierarchy.Node) float64 { return float64(n.Changes) }}
	s.lo, s.hi = extent(vals)
	s.stops = ramp("#feeaa7", "#3c40c6")
	return s
}

// ByLastChange colors files by the time of their latest commit. The eight
// oldest files are ignored when fitting the domain.
func ByLastChange(rev revision.Revision) *Scale {
	var vals []float64
	for _, e := range rev.Tree {
		if e.IsDir() {
			continue
		}
		var last float64
		for _, c := range e.Commits {
			last = math.Max(last, float64(c.Date.Unix()))
		}
		vals = append(vals, last)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	if len(vals) > 8 {
		vals = vals[:len(vals)-8]
	}
	s := &Scale{metric: func(n *hierarchy.Node) float64 {
		if n.LastChange.IsZero() {
			return 0
		}
		return float64(n.LastChange.Unix())
	}}
	s.lo, s.hi = extent(vals)
	s.stops = ramp("#c7ecee", "#823471")
	return s
}

func extent(vals []float64) (lo, hi float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi = vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func ramp(mid, top string) [5]rgb {
	b := mustParse(Blank)
	return [5]rgb{b, b, b, mustParse(mid), mustParse(top)}
}

type rgb struct{ r, g, b float64 }

func (c rgb) lerp(o rgb, t float64) rgb {
	return rgb{c.r + (o.r-c.r)*t, c.g + (o.g-c.g)*t, c.b + (o.b-c.b)*t}
}

func (c rgb) String() string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.r), clampByte(c.g), clampByte(c.b))
}

func clampByte(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}

func mustParse(hex string) rgb {
	c, err := parseHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(hex string) (rgb, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return rgb{}, fmt.Errorf("bad color %q", hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("bad color %q: %w", hex, err)
	}
	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, nil
}
