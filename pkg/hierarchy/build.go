package hierarchy

import (
	"math"

	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/revision"
)

// Weight limits for leaves.
const (
	MaxWeight        = 15000
	MaxUnknownWeight = 9000
	MediaWeight      = 100
	MinWeight        = 1
)

// NeutralColor is used when the policy has no opinion.
const NeutralColor = "#ced6e0"

var mediaExtensions = map[string]bool{
	"woff": true, "woff2": true, "ttf": true, "otf": true,
	"png": true, "jpg": true, "svg": true,
}

// ErrEmptyRevision is returned when a revision has no attachable entries.
var ErrEmptyRevision = errors.New(errors.ErrCodeEmptyRevision, "revision has no entries to lay out")

// ColorPolicy assigns colors. Known also decides which extensions get the
// larger weight cap. Implementations must be pure.
type ColorPolicy interface {
	Color(n *Node) string
	Known(ext string) bool
}

type neutral struct{}

func (neutral) Color(*Node) string { return NeutralColor }
func (neutral) Known(string) bool  { return false }

// Options configures [Build].
type Options struct {
	Colors ColorPolicy // nil colors everything NeutralColor
	Orders SortKeys    // sort keys of the previous frame; nil on the first frame
}

// Stats describes one normalization.
type Stats struct {
	Entries   int // entries in the revision
	Skipped   int // malformed or unattachable entries
	EmptyDirs int // directories dropped for having no files
	Nodes     int // nodes in the final tree, root and bucket included
	Leaves    int
	Depth     int // deepest node depth
}

type rawNode struct {
	name     string
	path     string
	dir      bool
	size     int64
	commits  []revision.Commit
	children []*rawNode
}

// Build normalizes rev into a sorted tree. It returns [ErrEmptyRevision]
// when nothing could be attached.
func Build(rev revision.Revision, opts Options) (*Node, Stats, error) {
	stats := Stats{Entries: len(rev.Tree)}
	if opts.Colors == nil {
		opts.Colors = neutral{}
	}

	raw := nest(rev, &stats)
	prune(raw, &stats)
	if len(raw.children) == 0 {
		return nil, stats, ErrEmptyRevision
	}

	b := builder{opts: opts}
	root := b.process(raw, 0, true)
	Sort(root)

	root.Walk(func(n *Node, depth int) bool {
		stats.Nodes++
		if n.IsLeaf() {
			stats.Leaves++
		}
		if depth > stats.Depth {
			stats.Depth = depth
		}
		return true
	})
	return root, stats, nil
}

// nest attaches entries under their parents, creating implied directories.
func nest(rev revision.Revision, stats *Stats) *rawNode {
	root := &rawNode{dir: true}
	byPath := map[string]*rawNode{"": root}

	var ensureDir func(path string) *rawNode
	ensureDir = func(path string) *rawNode {
		if n, ok := byPath[path]; ok {
			if !n.dir {
				return nil
			}
			return n
		}
		parent := ensureDir(parentPath(path))
		if parent == nil {
			return nil
		}
		n := &rawNode{name: baseName(path), path: path, dir: true}
		parent.children = append(parent.children, n)
		byPath[path] = n
		return n
	}

	for _, e := range rev.Tree {
		if errors.ValidateEntryPath(e.Path) != nil {
			stats.Skipped++
			continue
		}
		if e.IsDir() {
			if ensureDir(e.Path) == nil {
				stats.Skipped++
			}
			continue
		}
		if _, dup := byPath[e.Path]; dup {
			stats.Skipped++
			continue
		}
		parent := ensureDir(parentPath(e.Path))
		if parent == nil {
			stats.Skipped++
			continue
		}
		n := &rawNode{name: baseName(e.Path), path: e.Path, size: e.Size, commits: e.Commits}
		parent.children = append(parent.children, n)
		byPath[e.Path] = n
	}
	return root
}

// prune drops directories without files.
func prune(n *rawNode, stats *Stats) bool {
	if !n.dir {
		return true
	}
	kept := n.children[:0]
	for _, c := range n.children {
		if prune(c, stats) {
			kept = append(kept, c)
		}
	}
	n.children = kept
	if len(kept) == 0 && n.path != "" {
		stats.EmptyDirs++
		return false
	}
	return true
}

type builder struct {
	opts Options
}

func (b *builder) process(raw *rawNode, index int, isRoot bool) *Node {
	n := &Node{Name: raw.name, Path: raw.path}

	if !raw.dir {
		n.Kind = Leaf
		n.Extension = extensionOf(n.Name)
		n.Weight = b.leafWeight(n.Extension, raw.size) + float64(index)
		n.Changes = len(raw.commits)
		for _, c := range raw.commits {
			if c.Date.After(n.LastChange) {
				n.LastChange = c.Date
			}
		}
		b.finish(n, index)
		return n
	}

	n.Kind = Internal
	children := make([]*Node, len(raw.children))
	for i, c := range raw.children {
		children[i] = b.process(c, i, false)
	}

	if !isRoot {
		for len(children) == 1 && children[0].Kind == Internal {
			only := children[0]
			n.Name = n.Name + "/" + only.Name
			n.Path = only.Path
			children = only.Children
		}
	} else {
		children = b.bucketLoose(children)
	}

	n.Children = children
	n.Extension = extensionOf(n.Name)
	for _, c := range children {
		n.Weight += c.Weight
		n.Changes += c.Changes
		if c.LastChange.After(n.LastChange) {
			n.LastChange = c.LastChange
		}
	}
	b.finish(n, index)
	return n
}

// bucketLoose keeps directories in place and wraps root-level files.
func (b *builder) bucketLoose(children []*Node) []*Node {
	var dirs, loose []*Node
	for _, c := range children {
		if c.IsLeaf() {
			loose = append(loose, c)
		} else {
			dirs = append(dirs, c)
		}
	}
	if len(loose) == 0 {
		return dirs
	}

	bucket := &Node{Name: LooseBucketPath, Path: LooseBucketPath, Kind: Internal, Children: loose}
	for _, c := range loose {
		bucket.Weight += c.Weight
		bucket.Changes += c.Changes
		if c.LastChange.After(bucket.LastChange) {
			bucket.LastChange = c.LastChange
		}
	}
	b.finish(bucket, len(dirs))
	return append(dirs, bucket)
}

func (b *builder) finish(n *Node, index int) {
	n.Color = b.opts.Colors.Color(n)
	if n.Color == "" {
		n.Color = NeutralColor
	}
	n.SortKey = ResolveSortKey(n, index, b.opts.Orders)
}

func (b *builder) leafWeight(ext string, size int64) float64 {
	if mediaExtensions[ext] {
		return MediaWeight
	}
	s := float64(size)
	if !b.opts.Colors.Known(ext) {
		s = math.Min(s, MaxUnknownWeight)
	}
	return math.Max(MinWeight, math.Min(MaxWeight, s))
}

func baseName(path string) string {
	if i := len(parentPath(path)); i > 0 {
		return path[i+1:]
	}
	return path
}
