package hierarchy

import "sort"

// Sort keys with special meaning.
const (
	NewChildSortKey = -100000000 // new or renamed child of an established parent
	PublicSortKey   = -1000000   // the privileged "public" directory
	PublicName      = "public"
)

// SortKeys looks up a sort key cached from the previous frame.
type SortKeys interface {
	SortKey(path string) (float64, bool)
}

// ResolveSortKey computes n's sort key. n.Weight must already be set.
func ResolveSortKey(n *Node, index int, prev SortKeys) float64 {
	if prev != nil {
		if k, ok := prev.SortKey(n.Path); ok {
			return k
		}
		if _, ok := prev.SortKey(parentPath(n.Path)); ok {
			return NewChildSortKey
		}
	}
	if n.Name == PublicName {
		return PublicSortKey
	}
	return n.Weight - float64(index)
}

// Sort orders every sibling group by descending sort key, then by
// descending name.
func Sort(root *Node) {
	root.Walk(func(n *Node, _ int) bool {
		sort.SliceStable(n.Children, func(i, j int) bool {
			a, b := n.Children[i], n.Children[j]
			if a.SortKey != b.SortKey {
				return a.SortKey > b.SortKey
			}
			return a.Name > b.Name
		})
		return true
	})
}
