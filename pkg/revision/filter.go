package revision

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/treerings/pkg/errors"
)

// Filter drops tree entries whose path matches any exclude glob.
// Patterns use doublestar syntax ("**/node_modules/**", "*.lock").
type Filter struct {
	patterns []string
}

// NewFilter validates the patterns and returns a Filter.
func NewFilter(patterns ...string) (*Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid exclude pattern %q", p)
		}
	}
	return &Filter{patterns: patterns}, nil
}

// Match reports whether path is excluded. A directory match also
// excludes everything below it.
func (f *Filter) Match(path string) bool {
	if f == nil {
		return false
	}
	for _, p := range f.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
		if ok, _ := doublestar.Match(p+"/**", path); ok {
			return true
		}
	}
	return false
}

// Apply returns a copy of rev without excluded entries.
func (f *Filter) Apply(rev Revision) Revision {
	if f == nil || len(f.patterns) == 0 {
		return rev
	}
	out := Revision{Tag: rev.Tag, Tree: make([]Entry, 0, len(rev.Tree))}
	for _, e := range rev.Tree {
		if !f.Match(e.Path) {
			out.Tree = append(out.Tree, e)
		}
	}
	return out
}

// ApplyAll filters every revision.
func (f *Filter) ApplyAll(revs []Revision) []Revision {
	out := make([]Revision, len(revs))
	for i, r := range revs {
		out[i] = f.Apply(r)
	}
	return out
}
