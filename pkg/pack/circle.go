package pack

import "github.com/matzehuels/treerings/pkg/hierarchy"

// Circle is a node annotated with geometry. X and Y are absolute canvas
// coordinates once [Pack] returns.
type Circle struct {
	Node     *hierarchy.Node
	X, Y, R  float64
	Value    float64 // subtree weight
	Depth    int
	Parent   *Circle
	Children []*Circle
}

// Path returns the node's cache key.
func (c *Circle) Path() string { return c.Node.Path }

// IsLeaf reports whether c has no children.
func (c *Circle) IsLeaf() bool { return len(c.Children) == 0 }

// EachBefore visits c and its descendants in pre-order.
func (c *Circle) EachBefore(fn func(*Circle)) {
	fn(c)
	for _, ch := range c.Children {
		ch.EachBefore(fn)
	}
}

// EachAfter visits c's descendants before c itself.
func (c *Circle) EachAfter(fn func(*Circle)) {
	for _, ch := range c.Children {
		ch.EachAfter(fn)
	}
	fn(c)
}

// Descendants returns c and every descendant in breadth-first order.
func (c *Circle) Descendants() []*Circle {
	out := []*Circle{c}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].Children...)
	}
	return out
}

// Translate moves c and its whole subtree by (dx, dy).
func (c *Circle) Translate(dx, dy float64) {
	c.EachBefore(func(n *Circle) {
		n.X += dx
		n.Y += dy
	})
}

// Find returns the circle with the given path, or nil.
func (c *Circle) Find(path string) *Circle {
	for _, d := range c.Descendants() {
		if d.Path() == path {
			return d
		}
	}
	return nil
}

func fromNode(n *hierarchy.Node, parent *Circle, depth int) *Circle {
	c := &Circle{Node: n, Parent: parent, Depth: depth}
	if n.IsLeaf() {
		c.Value = n.Weight
		return c
	}
	c.Children = make([]*Circle, len(n.Children))
	for i, ch := range n.Children {
		c.Children[i] = fromNode(ch, c, depth+1)
		c.Value += c.Children[i].Value
	}
	return c
}
