package nodelink

import (
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/revision"
)

func testTree(t *testing.T) *hierarchy.Node {
	t.Helper()
	rev := revision.Revision{Tag: "v1", Tree: []revision.Entry{
		{Path: "README.md", Type: revision.KindBlob, Size: 100},
		{Path: "src/shape.js", Type: revision.KindBlob, Size: 1000},
		{Path: "src/curve/basis.js", Type: revision.KindBlob, Size: 500},
		{Path: "src/curve/step.js", Type: revision.KindBlob, Size: 400},
	}}
	root, _, err := hierarchy.Build(rev, hierarchy.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testTree(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"/" [label="/"];`,
		`"src" [label="src/"];`,
		`"src/shape.js" [label="shape.js", fillcolor="#ced6e0"];`,
		`"/" -> "src";`,
		`"src" -> "src/curve";`,
		`"src/curve" -> "src/curve/basis.js";`,
		`style="rounded,filled,dashed"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTMaxDepth(t *testing.T) {
	dot := ToDOT(testTree(t), Options{MaxDepth: 2})
	if strings.Contains(dot, "basis.js") {
		t.Error("nodes below MaxDepth should be omitted")
	}
	if strings.Contains(dot, `"src/curve" ->`) {
		t.Error("edges from the deepest drawn level should be omitted")
	}
	if !strings.Contains(dot, `"src/curve" [`) {
		t.Error("nodes at MaxDepth should be drawn")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testTree(t), Options{Detailed: true})
	if !strings.Contains(dot, `ext: js`) || !strings.Contains(dot, `weight: `) {
		t.Errorf("detailed labels missing metadata:\n%s", dot)
	}
}

func TestToDOTNil(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("unexpected DOT for nil tree: %q", dot)
	}
}

func TestToDOTRadial(t *testing.T) {
	tests := []struct {
		radial    bool
		want, not string
	}{
		{false, "rankdir=LR;", "layout=twopi;"},
		{true, "layout=twopi;", "rankdir=LR;"},
	}
	for _, tt := range tests {
		t.Run(strconv.FormatBool(tt.radial), func(t *testing.T) {
			dot := ToDOT(testTree(t), Options{Radial: tt.radial})
			if !strings.Contains(dot, tt.want) {
				t.Errorf("DOT missing %q", tt.want)
			}
			if strings.Contains(dot, tt.not) {
				t.Errorf("DOT should not contain %q", tt.not)
			}
		})
	}
}

func TestFitViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(fitViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("fitViewBox() = %s", out)
	}
}

func TestFitViewBoxLeavesOtherSVG(t *testing.T) {
	for _, in := range []string{
		`<svg width="10"><g/></svg>`,
		`<svg viewBox="0 0 0 50"><g/></svg>`,
	} {
		if out := string(fitViewBox([]byte(in))); out != in {
			t.Errorf("fitViewBox(%q) = %q", in, out)
		}
	}
}
