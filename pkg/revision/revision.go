package revision

import (
	"strings"
	"time"
)

// Kind is the git object type of a tree entry.
type Kind string

const (
	KindTree Kind = "tree" // directory
	KindBlob Kind = "blob" // file
)

// Commit is one change that touched an entry. Only used by the
// change-based color encodings.
type Commit struct {
	SHA  string    `json:"sha" yaml:"sha"`
	Date time.Time `json:"date" yaml:"date"`
}

// Entry is one flat tree record.
type Entry struct {
	Path    string   `json:"path" yaml:"path"`
	Type    Kind     `json:"type" yaml:"type"`
	Size    int64    `json:"size,omitempty" yaml:"size,omitempty"`
	Commits []Commit `json:"commits,omitempty" yaml:"commits,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Type == KindTree }

// Name returns the final path segment.
func (e Entry) Name() string {
	if i := strings.LastIndexByte(e.Path, '/'); i >= 0 {
		return e.Path[i+1:]
	}
	return e.Path
}

// Dir returns the parent path, or "" for top-level entries.
func (e Entry) Dir() string {
	if i := strings.LastIndexByte(e.Path, '/'); i >= 0 {
		return e.Path[:i]
	}
	return ""
}

// Revision is one historical snapshot of the tracked tree.
type Revision struct {
	Tag  string  `json:"tag_name" yaml:"tag_name"`
	Tree []Entry `json:"tree" yaml:"tree"`
}

// Empty reports whether the revision has nothing to lay out.
func (r Revision) Empty() bool { return len(r.Tree) == 0 }

// Files returns the number of blob entries.
func (r Revision) Files() int {
	n := 0
	for _, e := range r.Tree {
		if e.Type == KindBlob {
			n++
		}
	}
	return n
}

// Index returns the position of the revision tagged tag, or -1.
func Index(revs []Revision, tag string) int {
	for i, r := range revs {
		if r.Tag == tag {
			return i
		}
	}
	return -1
}
