package hierarchy

import (
	"testing"
	"time"

	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/revision"
)

type knownExts map[string]string

func (k knownExts) Color(n *Node) string {
	if c, ok := k[n.Extension]; ok {
		return c
	}
	return ""
}

func (k knownExts) Known(ext string) bool {
	_, ok := k[ext]
	return ok
}

type keyMap map[string]float64

func (m keyMap) SortKey(path string) (float64, bool) {
	k, ok := m[path]
	return k, ok
}

func blob(path string, size int64) revision.Entry {
	return revision.Entry{Path: path, Type: revision.KindBlob, Size: size}
}

func tree(path string) revision.Entry {
	return revision.Entry{Path: path, Type: revision.KindTree}
}

func TestBuildCollapsesSingleChildChains(t *testing.T) {
	rev := revision.Revision{Tag: "v1", Tree: []revision.Entry{
		tree("a"), tree("a/b"), tree("a/b/c"),
		blob("a/b/c/file.txt", 10),
	}}

	root, _, err := Build(rev, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1", len(root.Children))
	}
	dir := root.Children[0]
	if dir.Name != "a/b/c" || dir.Path != "a/b/c" {
		t.Errorf("collapsed node = %q (%q), want a/b/c", dir.Name, dir.Path)
	}
	if dir.Kind != Internal || len(dir.Children) != 1 {
		t.Fatalf("collapsed node should keep the file as its only child, got %d children", len(dir.Children))
	}
	if f := dir.Children[0]; f.Path != "a/b/c/file.txt" || !f.IsLeaf() {
		t.Errorf("child = %+v", f)
	}
}

func TestBuildCollapseStopsAtBranching(t *testing.T) {
	rev := revision.Revision{Tree: []revision.Entry{
		blob("src/lib/a.js", 1),
		blob("src/lib/b.js", 1),
		blob("src/lib/deep/only/c.js", 1),
	}}
	root, _, err := Build(rev, Options{})
	if err != nil {
		t.Fatal(err)
	}
	src := root.Children[0]
	if src.Name != "src/lib" || src.Path != "src/lib" {
		t.Errorf("top = %q (%q), want src/lib", src.Name, src.Path)
	}
	deep := root.Find("src/lib/deep/only")
	if deep == nil || deep.Name != "deep/only" {
		t.Errorf("deep chain = %+v, want name deep/only", deep)
	}
}

func TestBuildLooseBucket(t *testing.T) {
	rev := revision.Revision{Tree: []revision.Entry{
		blob("README.md", 100),
		blob("package.json", 50),
		blob("src/index.js", 10),
		blob("src/other.js", 10),
	}}
	root, stats, err := Build(rev, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
	var bucket *Node
	for _, c := range root.Children {
		if c.IsLeaf() {
			t.Errorf("top layer should be directories only, found file %q", c.Path)
		}
		if c.IsBucket() {
			bucket = c
		}
	}
	if bucket == nil || len(bucket.Children) != 2 {
		t.Fatalf("bucket = %+v, want two loose files", bucket)
	}
	if stats.Leaves != 4 || stats.Nodes != 7 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBuildNoBucketWithoutLooseFiles(t *testing.T) {
	rev := revision.Revision{Tree: []revision.Entry{blob("src/a.js", 1), blob("src/b.js", 1)}}
	root, _, err := Build(rev, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if root.Find(LooseBucketPath) != nil {
		t.Error("bucket should only exist when there are loose files")
	}
}

func TestBuildWeights(t *testing.T) {
	colors := knownExts{"js": "#f1e05a"}
	rev := revision.Revision{Tree: []revision.Entry{
		blob("d/big.js", 20000),
		blob("d/big.bin", 20000),
		blob("d/logo.png", 123456),
		blob("d/empty.js", 0),
		blob("d/small.bin", 42),
	}}
	root, _, err := Build(rev, Options{Colors: colors})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want float64
	}{
		{"d/big.js", MaxWeight + 0},
		{"d/big.bin", MaxUnknownWeight + 1},
		{"d/logo.png", MediaWeight + 2},
		{"d/empty.js", MinWeight + 3},
		{"d/small.bin", 42 + 4},
	}
	var sum float64
	for _, tt := range tests {
		n := root.Find(tt.path)
		if n == nil {
			t.Fatalf("node %s missing", tt.path)
		}
		if n.Weight != tt.want {
			t.Errorf("%s weight = %v, want %v", tt.path, n.Weight, tt.want)
		}
		sum += tt.want
	}
	if d := root.Find("d"); d.Weight != sum {
		t.Errorf("directory weight = %v, want sum %v", d.Weight, sum)
	}
}

func TestBuildExtensionsAndColors(t *testing.T) {
	colors := knownExts{"js": "#f1e05a", "css": "#563d7c"}
	rev := revision.Revision{Tree: []revision.Entry{
		blob("web/a.JS", 1),
		blob("web/Makefile", 1),
		blob("web/.gitignore", 1),
	}}
	root, _, err := Build(rev, Options{Colors: colors})
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]struct{ ext, color string }{
		"web/a.JS":       {"js", "#f1e05a"},
		"web/Makefile":   {"", NeutralColor},
		"web/.gitignore": {"gitignore", NeutralColor},
	}
	for path, want := range tests {
		n := root.Find(path)
		if n.Extension != want.ext || n.Color != want.color {
			t.Errorf("%s = (%q, %q), want (%q, %q)", path, n.Extension, n.Color, want.ext, want.color)
		}
	}
}

func TestBuildSkipsMalformedEntries(t *testing.T) {
	rev := revision.Revision{Tree: []revision.Entry{
		blob("src/ok.js", 1),
		blob("", 1),
		blob("src//bad.js", 1),
		blob("/abs.js", 1),
		blob("src/ok.js", 2),
		blob("src/ok.js/nested.js", 1),
		tree("empty"),
	}}
	root, stats, err := Build(rev, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if stats.Skipped != 5 {
		t.Errorf("Skipped = %d, want 5", stats.Skipped)
	}
	if stats.EmptyDirs != 1 {
		t.Errorf("EmptyDirs = %d, want 1", stats.EmptyDirs)
	}
	if root.Find("src/ok.js") == nil {
		t.Error("valid entry was dropped")
	}
}

func TestBuildEmptyRevision(t *testing.T) {
	tests := []revision.Revision{
		{},
		{Tree: []revision.Entry{blob("", 1)}},
		{Tree: []revision.Entry{tree("only-dir")}},
	}
	for _, rev := range tests {
		root, _, err := Build(rev, Options{})
		if root != nil || !errors.Is(err, errors.ErrCodeEmptyRevision) {
			t.Errorf("Build(%+v) = %v, %v; want nil, EMPTY_REVISION", rev, root, err)
		}
	}
}

func TestBuildChangeMetadata(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	rev := revision.Revision{Tree: []revision.Entry{
		{Path: "src/a.js", Type: revision.KindBlob, Size: 1, Commits: []revision.Commit{{SHA: "1", Date: t1}, {SHA: "2", Date: t2}}},
		{Path: "src/b.js", Type: revision.KindBlob, Size: 1, Commits: []revision.Commit{{SHA: "1", Date: t1}}},
	}}
	root, _, err := Build(rev, Options{})
	if err != nil {
		t.Fatal(err)
	}
	src := root.Find("src")
	if src.Changes != 3 || !src.LastChange.Equal(t2) {
		t.Errorf("src changes = %d, last = %v", src.Changes, src.LastChange)
	}
}
