package revision

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/treerings/pkg/errors"
)

const sampleJSON = `[
  {"tag_name": "v1.0.0", "tree": [
    {"path": "src", "type": "tree"},
    {"path": "src/shape.js", "type": "blob", "size": 1000},
    {"path": "src/utils.js", "type": "blob", "size": 500}
  ]},
  {"tag_name": "v1.1.0", "tree": [
    {"path": "src", "type": "tree"},
    {"path": "src/shape.js", "type": "blob", "size": 1000},
    {"path": "src/utils.js", "type": "blob", "size": 500},
    {"path": "src/catmull-rom.js", "type": "blob", "size": 300}
  ]}
]`

func TestDecodeJSON(t *testing.T) {
	revs, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("len(revs) = %d, want 2", len(revs))
	}
	if revs[1].Tag != "v1.1.0" {
		t.Errorf("Tag = %q, want v1.1.0", revs[1].Tag)
	}
	if got := revs[1].Files(); got != 3 {
		t.Errorf("Files() = %d, want 3", got)
	}
	if !revs[0].Tree[0].IsDir() {
		t.Error("src should be a directory")
	}
}

func TestDecodeSingleObject(t *testing.T) {
	in := `{"tag_name": "v0", "tree": [{"path": "a.go", "type": "blob", "size": 3}]}`
	revs, err := Decode(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(revs) != 1 || revs[0].Tag != "v0" {
		t.Fatalf("Decode() = %+v", revs)
	}
}

func TestDecodeYAML(t *testing.T) {
	in := `
- tag_name: v2
  tree:
    - path: lib/index.ts
      type: blob
      size: 42
      commits:
        - sha: abc
          date: 2024-01-02T03:04:05Z
`
	revs, err := Decode(strings.NewReader(in), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	e := revs[0].Tree[0]
	if e.Size != 42 || len(e.Commits) != 1 || e.Commits[0].SHA != "abc" {
		t.Errorf("entry = %+v", e)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"bad json", `[{"tag_name": }]`, FormatJSON},
		{"bad yaml", "- tag_name: [", FormatYAML},
		{"unknown format", `[]`, Format("toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Decode() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestWriteReadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	revs, _ := Decode(strings.NewReader(sampleJSON), FormatJSON)

	for _, name := range []string{"revs.json", "revs.yaml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, revs); err != nil {
			t.Fatalf("WriteFile(%s) error: %v", name, err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error: %v", name, err)
		}
		if Fingerprint(got[1]) != Fingerprint(revs[1]) {
			t.Errorf("%s: fingerprint changed after round trip", name)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json": FormatJSON,
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a":      FormatJSON,
	}
	for in, want := range tests {
		if got := FormatFromPath(in); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntryNameDir(t *testing.T) {
	tests := []struct {
		path, name, dir string
	}{
		{"a.js", "a.js", ""},
		{"src/a.js", "a.js", "src"},
		{"src/lib/a.js", "a.js", "src/lib"},
	}
	for _, tt := range tests {
		e := Entry{Path: tt.path}
		if e.Name() != tt.name || e.Dir() != tt.dir {
			t.Errorf("Entry(%q) Name/Dir = %q/%q, want %q/%q", tt.path, e.Name(), e.Dir(), tt.name, tt.dir)
		}
	}
}

func TestIndex(t *testing.T) {
	revs := []Revision{{Tag: "a"}, {Tag: "b"}}
	if Index(revs, "b") != 1 || Index(revs, "z") != -1 {
		t.Error("Index() returned wrong positions")
	}
}

func TestFilter(t *testing.T) {
	f, err := NewFilter("**/node_modules", "*.lock", "docs/**")
	if err != nil {
		t.Fatalf("NewFilter() error: %v", err)
	}

	rev := Revision{Tag: "v1", Tree: []Entry{
		{Path: "src/a.js", Type: KindBlob, Size: 1},
		{Path: "yarn.lock", Type: KindBlob, Size: 1},
		{Path: "docs/index.md", Type: KindBlob, Size: 1},
		{Path: "pkg/node_modules/x/index.js", Type: KindBlob, Size: 1},
		{Path: "pkg/node_modules", Type: KindTree},
	}}
	got := f.Apply(rev)
	if len(got.Tree) != 1 || got.Tree[0].Path != "src/a.js" {
		t.Errorf("Apply() kept %+v", got.Tree)
	}
	if len(rev.Tree) != 5 {
		t.Error("Apply() must not modify its input")
	}
}

func TestFilterInvalidPattern(t *testing.T) {
	if _, err := NewFilter("[unclosed"); err == nil {
		t.Error("NewFilter() should reject an invalid pattern")
	}
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	rev := Revision{Tree: []Entry{{Path: "a"}}}
	if f.Match("a") || len(f.Apply(rev).Tree) != 1 {
		t.Error("nil filter should keep everything")
	}
}

func TestFingerprint(t *testing.T) {
	a := Revision{Tree: []Entry{
		{Path: "a.js", Type: KindBlob, Size: 1},
		{Path: "b.js", Type: KindBlob, Size: 2},
	}}
	b := Revision{Tree: []Entry{a.Tree[1], a.Tree[0]}}
	c := Revision{Tree: []Entry{a.Tree[0], {Path: "b.js", Type: KindBlob, Size: 3}}}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint should not depend on entry order")
	}
	if Fingerprint(a) == Fingerprint(c) {
		t.Error("fingerprint should change with size")
	}
	if got := FingerprintHex(a); len(got) != 16 {
		t.Errorf("FingerprintHex() = %q, want 16 digits", got)
	}
}

func TestFingerprintCommits(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	withCommits := func(dates ...time.Time) Revision {
		e := Entry{Path: "src/a.js", Type: KindBlob, Size: 10}
		for i, d := range dates {
			e.Commits = append(e.Commits, Commit{SHA: string(rune('a' + i)), Date: d})
		}
		return Revision{Tag: "v1", Tree: []Entry{e}}
	}
	base := withCommits(day, day.AddDate(0, 1, 0))

	tests := []struct {
		name string
		rev  Revision
		same bool
	}{
		{"identical", withCommits(day, day.AddDate(0, 1, 0)), true},
		{"other tag", Revision{Tag: "release-1", Tree: base.Tree}, true},
		{"commit order", Revision{Tree: []Entry{{Path: "src/a.js", Type: KindBlob, Size: 10,
			Commits: []Commit{base.Tree[0].Commits[1], base.Tree[0].Commits[0]}}}}, true},
		{"later date", withCommits(day, day.AddDate(0, 2, 0)), false},
		{"no commits", withCommits(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.rev) == Fingerprint(base); got != tt.same {
				t.Errorf("same fingerprint = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestFingerprintHexWidth(t *testing.T) {
	a := Revision{Tree: []Entry{{Path: "a.js", Type: KindBlob, Size: 1}}}
	if got := FingerprintHex(a); len(got) != 16 {
		t.Errorf("FingerprintHex() = %q, want 16 digits", got)
	}
}

func TestEncodeJSONIndent(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, []Revision{{Tag: "v1"}}, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\"tag_name\": \"v1\"") {
		t.Errorf("Encode() = %s", buf.String())
	}
}
