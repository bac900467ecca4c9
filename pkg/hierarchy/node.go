package hierarchy

import (
	"strings"
	"time"
)

// LooseBucketPath is the reserved name and path of the node that groups
// top-level files. Renderers skip it.
const LooseBucketPath = "__structure_loose_file__"

// Kind tags a node as a file or a directory.
type Kind uint8

const (
	Leaf     Kind = iota // file; has no children
	Internal             // directory; has at least one child
)

func (k Kind) String() string {
	if k == Internal {
		return "internal"
	}
	return "leaf"
}

// Node is one circle-to-be. Parents own their children exclusively.
type Node struct {
	Name      string // display label, "a/b/c" after collapsing
	Path      string // cache key
	Kind      Kind
	Extension string  // lower-cased suffix of the last name segment
	Weight    float64 // leaf: synthetic size plus sibling index; internal: sum of children
	SortKey   float64
	Color     string

	// Change metadata, aggregated bottom-up. Zero when the input carries no commits.
	Changes    int
	LastChange time.Time

	Children []*Node
}

// IsLeaf reports whether n is a file.
func (n *Node) IsLeaf() bool { return n.Kind == Leaf }

// IsBucket reports whether n is the loose-file bucket.
func (n *Node) IsBucket() bool { return n.Path == LooseBucketPath }

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(depth+1, fn)
	}
}

// Find returns the node with the given path, or nil.
func (n *Node) Find(path string) *Node {
	var found *Node
	n.Walk(func(c *Node, _ int) bool {
		if found != nil {
			return false
		}
		if c.Path == path {
			found = c
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node, int) bool { total++; return true })
	return total
}

// ChildExtensions returns the children's extensions in order.
func (n *Node) ChildExtensions() []string {
	out := make([]string, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Extension
	}
	return out
}

// extensionOf returns the lower-cased suffix after the last dot of the
// final segment, or "" when there is none.
func extensionOf(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// parentPath returns everything before the last slash.
func parentPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}
