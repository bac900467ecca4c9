package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/revision"
)

func tag(name, sha string) Tag {
	var t Tag
	t.Name = name
	t.Commit.SHA = sha
	return t
}

// fakeAPI serves three tags (newest first, as GitHub does) and a tree per commit.
func fakeAPI(t *testing.T, treeCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	trees := map[string]Tree{
		"c1": {SHA: "c1", Tree: []TreeEntry{
			{Path: "README.md", Type: "blob", Size: 100},
		}},
		"c2": {SHA: "c2", Tree: []TreeEntry{
			{Path: "README.md", Type: "blob", Size: 120},
			{Path: "src", Type: "tree"},
			{Path: "src/main.go", Type: "blob", Size: 900},
		}},
		"c3": {SHA: "c3", Tree: []TreeEntry{
			{Path: "README.md", Type: "blob", Size: 150},
			{Path: "src", Type: "tree"},
			{Path: "src/main.go", Type: "blob", Size: 1200},
			{Path: "vendor/lib", Type: "commit"},
		}},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/repos/owner/repo/tags":
			if r.URL.Query().Get("page") != "1" {
				json.NewEncoder(w).Encode([]Tag{})
				return
			}
			json.NewEncoder(w).Encode([]Tag{tag("v3", "c3"), tag("v2", "c2"), tag("v1", "c1")})
		case strings.HasPrefix(r.URL.Path, "/repos/owner/repo/git/trees/"):
			if treeCalls != nil {
				treeCalls.Add(1)
			}
			if r.URL.Query().Get("recursive") != "1" {
				t.Errorf("tree request without recursive=1: %s", r.URL)
			}
			sha := strings.TrimPrefix(r.URL.Path, "/repos/owner/repo/git/trees/")
			tree, ok := trees[sha]
			if !ok {
				http.NotFound(w, r)
				return
			}
			json.NewEncoder(w).Encode(tree)
		default:
			http.NotFound(w, r)
		}
	}))
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(c, "", time.Hour).WithBaseURL(serverURL)
}

func TestClientTags(t *testing.T) {
	server := fakeAPI(t, nil)
	defer server.Close()

	tags, err := testClient(t, server.URL).Tags(context.Background(), "owner", "repo", false)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 3 || tags[0].Name != "v3" || tags[2].Commit.SHA != "c1" {
		t.Errorf("unexpected tags: %+v", tags)
	}
}

func TestClientTagsPaginates(t *testing.T) {
	var pages atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		var batch []Tag
		if r.URL.Query().Get("page") == "1" {
			for i := 0; i < tagsPerPage; i++ {
				batch = append(batch, tag(fmt.Sprintf("t%d", i), "x"))
			}
		} else {
			batch = []Tag{tag("last", "y")}
		}
		json.NewEncoder(w).Encode(batch)
	}))
	defer server.Close()

	tags, err := testClient(t, server.URL).Tags(context.Background(), "o", "r", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != tagsPerPage+1 {
		t.Errorf("got %d tags, want %d", len(tags), tagsPerPage+1)
	}
	if pages.Load() != 2 {
		t.Errorf("fetched %d pages, want 2", pages.Load())
	}
}

func TestClientTree(t *testing.T) {
	server := fakeAPI(t, nil)
	defer server.Close()

	tree, err := testClient(t, server.URL).Tree(context.Background(), "owner", "repo", "c2", false)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree.Tree) != 3 {
		t.Errorf("got %d entries, want 3", len(tree.Tree))
	}
}

func TestClientTreeNotFound(t *testing.T) {
	server := fakeAPI(t, nil)
	defer server.Close()

	_, err := testClient(t, server.URL).Tree(context.Background(), "owner", "repo", "nope", false)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestClientRevisions(t *testing.T) {
	var calls atomic.Int32
	server := fakeAPI(t, &calls)
	defer server.Close()
	c := testClient(t, server.URL)

	revs, err := c.Revisions(context.Background(), "owner", "repo", RevisionOptions{})
	if err != nil {
		t.Fatalf("Revisions: %v", err)
	}
	var tags []string
	for _, r := range revs {
		tags = append(tags, r.Tag)
	}
	if strings.Join(tags, ",") != "v1,v2,v3" {
		t.Errorf("tags = %v, want oldest first", tags)
	}

	last := revs[2]
	if len(last.Tree) != 3 {
		t.Errorf("submodule entry should be dropped, got %d entries", len(last.Tree))
	}
	if last.Tree[1].Type != revision.KindTree || last.Tree[2].Size != 1200 {
		t.Errorf("unexpected entries: %+v", last.Tree)
	}

	// trees are served from the cache the second time
	if _, err := c.Revisions(context.Background(), "owner", "repo", RevisionOptions{}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("tree endpoint called %d times, want 3", calls.Load())
	}
}

func TestSelectTags(t *testing.T) {
	all := []Tag{tag("v3", "c3"), tag("v2", "c2"), tag("v1", "c1")}
	tests := []struct {
		name    string
		opts    RevisionOptions
		want    string
		wantErr bool
	}{
		{name: "all oldest first", want: "v1,v2,v3"},
		{name: "limit keeps newest", opts: RevisionOptions{Limit: 2}, want: "v2,v3"},
		{name: "limit above count", opts: RevisionOptions{Limit: 10}, want: "v1,v2,v3"},
		{name: "explicit order", opts: RevisionOptions{Tags: []string{"v3", "v1"}}, want: "v3,v1"},
		{name: "unknown tag", opts: RevisionOptions{Tags: []string{"v9"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectTags(all, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeRevisionNotFound) {
					t.Errorf("expected REVISION_NOT_FOUND, got %v", err)
				}
				return
			}
			var names []string
			for _, g := range got {
				names = append(names, g.Name)
			}
			if s := strings.Join(names, ","); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
}

func TestNewClientHeaders(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Tag{})
	}))
	defer server.Close()

	c := NewClient(nil, "secret", time.Hour).WithBaseURL(server.URL)
	if _, err := c.Tags(context.Background(), "o", "r", false); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
}
