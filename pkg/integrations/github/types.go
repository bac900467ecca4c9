package github

// Tag is a repository tag as returned by the tags endpoint.
type Tag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// TreeEntry is one record of a recursive git tree.
// Type is "blob", "tree" or "commit" (a submodule).
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int64  `json:"size,omitempty"`
}

// Tree is the recursive tree of one commit.
type Tree struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// RevisionOptions selects which tags [Client.Revisions] fetches.
type RevisionOptions struct {
	Tags        []string // explicit tags in this order; empty means all tags oldest first
	Limit       int      // keep only the newest Limit tags; 0 means no limit
	Refresh     bool     // bypass the response cache
	Concurrency int      // parallel tree fetches; 0 means 4
}
