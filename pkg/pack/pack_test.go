package pack

import (
	"math"
	"testing"

	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/revision"
)

const eps = 1e-6

func circles(radii ...float64) []*Circle {
	out := make([]*Circle, len(radii))
	for i, r := range radii {
		out[i] = &Circle{R: r}
	}
	return out
}

func dist(a, b *Circle) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestSiblingsSmall(t *testing.T) {
	tests := []struct {
		name  string
		radii []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"one", []float64{3}, 3},
		{"two", []float64{1, 1}, 2},
		{"two unequal", []float64{2, 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Siblings(circles(tt.radii...)); math.Abs(got-tt.want) > eps {
				t.Errorf("Siblings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSiblingsNoOverlap(t *testing.T) {
	var radii []float64
	for i := 1; i <= 40; i++ {
		radii = append(radii, math.Sqrt(float64(i*37%101+1)))
	}
	cs := circles(radii...)
	r := Siblings(cs)

	for i := range cs {
		if d := math.Hypot(cs[i].X, cs[i].Y) + cs[i].R; d > r+eps {
			t.Errorf("circle %d escapes the enclosure: %v > %v", i, d, r)
		}
		for j := i + 1; j < len(cs); j++ {
			if d := dist(cs[i], cs[j]); d < cs[i].R+cs[j].R-eps {
				t.Errorf("circles %d and %d overlap: %v < %v", i, j, d, cs[i].R+cs[j].R)
			}
		}
	}
}

func TestSiblingsDeterministic(t *testing.T) {
	a := circles(5, 3, 8, 1, 2, 7, 4, 6)
	b := circles(5, 3, 8, 1, 2, 7, 4, 6)
	ra, rb := Siblings(a), Siblings(b)
	if ra != rb {
		t.Fatalf("radius differs: %v vs %v", ra, rb)
	}
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Errorf("circle %d differs between runs", i)
		}
	}
}

func TestEnclose(t *testing.T) {
	e := Enclose([]*Circle{{X: 0, Y: 0, R: 1}, {X: 4, Y: 0, R: 1}})
	if math.Abs(e.X-2) > eps || math.Abs(e.Y) > eps || math.Abs(e.R-3) > eps {
		t.Errorf("Enclose() = %+v, want {2 0 3}", e)
	}

	inner := Enclose([]*Circle{{X: 0, Y: 0, R: 10}, {X: 1, Y: 1, R: 1}})
	if math.Abs(inner.R-10) > eps {
		t.Errorf("enclosed circle should not grow the result, got r=%v", inner.R)
	}
}

func TestRandomSequence(t *testing.T) {
	r := NewRandom()
	// (1664525*1 + 1013904223) / 2^32
	want := 1015568748.0 / 4294967296.0
	if got := r.Float64(); got != want {
		t.Errorf("first value = %v, want %v", got, want)
	}
	for i := 0; i < 1000; i++ {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("value %v out of [0, 1)", v)
		}
	}
}

func buildTree(t *testing.T, entries ...revision.Entry) *hierarchy.Node {
	t.Helper()
	root, _, err := hierarchy.Build(revision.Revision{Tree: entries}, hierarchy.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func blob(path string, size int64) revision.Entry {
	return revision.Entry{Path: path, Type: revision.KindBlob, Size: size}
}

func sampleTree(t *testing.T) *hierarchy.Node {
	return buildTree(t,
		blob("README.md", 400),
		blob("src/shape.js", 1000),
		blob("src/utils.js", 500),
		blob("src/curve/linear.js", 300),
		blob("src/curve/basis.js", 700),
		blob("src/curve/step.js", 200),
		blob("test/shape-test.js", 800),
		blob("test/utils-test.js", 100),
	)
}

func TestPackRootFillsCanvas(t *testing.T) {
	c := Pack(sampleTree(t), DefaultOptions())
	if c.X != 500 || c.Y != 650 {
		t.Errorf("root center = (%v, %v), want (500, 650)", c.X, c.Y)
	}
	if math.Abs(c.R-500) > eps {
		t.Errorf("root radius = %v, want 500", c.R)
	}
}

func TestPackContainmentAndSeparation(t *testing.T) {
	c := Pack(sampleTree(t), DefaultOptions())
	for _, n := range c.Descendants() {
		if n.R <= 0 {
			t.Errorf("%s has non-positive radius", n.Path())
		}
		if p := n.Parent; p != nil {
			if d := dist(n, p) + n.R; d > p.R+eps {
				t.Errorf("%s escapes %s: %v > %v", n.Path(), p.Path(), d, p.R)
			}
		}
		for i, a := range n.Children {
			for _, b := range n.Children[i+1:] {
				if d := dist(a, b); d < a.R+b.R-eps {
					t.Errorf("%s overlaps %s", a.Path(), b.Path())
				}
			}
		}
	}
}

func TestPackLeafRadiusFollowsSqrtWeight(t *testing.T) {
	root := buildTree(t,
		blob("d/a.bin", 100),
		blob("d/b.bin", 399),
	)
	c := Pack(root, DefaultOptions())
	a, b := c.Find("d/a.bin"), c.Find("d/b.bin")
	// Weights are 100 and 399+1 after the sibling tiebreak.
	if ratio := b.R / a.R; math.Abs(ratio-2) > 1e-9 {
		t.Errorf("radius ratio = %v, want 2", ratio)
	}
}

func TestPackDeterministic(t *testing.T) {
	a := Pack(sampleTree(t), DefaultOptions()).Descendants()
	b := Pack(sampleTree(t), DefaultOptions()).Descendants()
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y || a[i].R != b[i].R {
			t.Errorf("%s differs between runs", a[i].Path())
		}
	}
}

func TestPackNil(t *testing.T) {
	if Pack(nil, DefaultOptions()) != nil {
		t.Error("Pack(nil) should return nil")
	}
}

func TestDefaultPadding(t *testing.T) {
	leaf := func() *Circle { return &Circle{} }
	dir := func() *Circle { return &Circle{Children: []*Circle{leaf()}} }

	tests := []struct {
		name string
		c    *Circle
		want float64
	}{
		{"root", &Circle{Depth: 0, Children: []*Circle{leaf(), leaf()}}, RootPadding},
		{"many leaves", &Circle{Depth: 1, Children: []*Circle{leaf(), leaf(), dir()}}, LoosePadding},
		{"one leaf", &Circle{Depth: 2, Children: []*Circle{leaf(), dir()}}, DirPadding},
		{"only dirs", &Circle{Depth: 1, Children: []*Circle{dir(), dir()}}, DirPadding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultPadding(tt.c); got != tt.want {
				t.Errorf("DefaultPadding() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslateAndDescendants(t *testing.T) {
	c := Pack(sampleTree(t), DefaultOptions())
	all := c.Descendants()
	if all[0] != c {
		t.Fatal("Descendants() must start with the receiver")
	}
	for i := 1; i < len(all); i++ {
		if all[i].Depth < all[i-1].Depth {
			t.Fatal("Descendants() must be breadth first")
		}
	}

	src := c.Find("src")
	child := src.Children[0]
	cx, cy := child.X, child.Y
	src.Translate(10, -5)
	if child.X != cx+10 || child.Y != cy-5 {
		t.Error("Translate() should move the whole subtree")
	}
}
