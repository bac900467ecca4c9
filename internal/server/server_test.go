package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treerings/pkg/revision"
	"github.com/matzehuels/treerings/pkg/store"
)

func blob(path string, size int64) revision.Entry {
	return revision.Entry{Path: path, Type: revision.KindBlob, Size: size}
}

var sampleRevisions = []revision.Revision{
	{Tag: "v1", Tree: []revision.Entry{blob("src/a.go", 1000), blob("src/b.go", 400)}},
	{Tag: "v2", Tree: []revision.Entry{blob("src/a.go", 1000), blob("src/b.go", 400), blob("src/c.go", 300)}},
}

func testServer(t *testing.T) http.Handler {
	t.Helper()
	s := New(Options{
		Store:  store.NewMemoryStore(),
		Logger: log.New(io.Discard),
	})
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createTimeline(t *testing.T, h http.Handler, body any) store.Summary {
	t.Helper()
	w := do(t, h, http.MethodPost, "/timelines", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var sum store.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	return sum
}

func TestHealth(t *testing.T) {
	h := testServer(t)
	w := do(t, h, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/version", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"version"`) {
		t.Errorf("version = %d %s", w.Code, w.Body.String())
	}
}

func TestCreateAndGetTimeline(t *testing.T) {
	h := testServer(t)
	sum := createTimeline(t, h, map[string]any{"revisions": sampleRevisions})
	if sum.Frames != 2 || sum.ID == "" {
		t.Fatalf("summary = %+v", sum)
	}

	w := do(t, h, http.MethodGet, "/timelines/"+sum.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var tl store.Timeline
	if err := json.Unmarshal(w.Body.Bytes(), &tl); err != nil {
		t.Fatal(err)
	}
	if len(tl.Frames) != 2 || tl.Tags[1] != "v2" {
		t.Errorf("timeline tags = %v", tl.Tags)
	}
	if len(tl.Cache) == 0 {
		t.Error("timeline should carry the final layout cache")
	}

	w = do(t, h, http.MethodGet, "/timelines", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), sum.ID) {
		t.Errorf("list = %d %s", w.Code, w.Body.String())
	}
}

func TestCreateTimelineErrors(t *testing.T) {
	h := testServer(t)
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"no revisions", map[string]any{}, http.StatusBadRequest},
		{"file source", map[string]any{"source": map[string]any{"file": "/etc/passwd"}}, http.StatusBadRequest},
		{"both", map[string]any{"revisions": sampleRevisions, "source": map[string]any{"github": "a/b"}}, http.StatusBadRequest},
		{"bad options", map[string]any{"revisions": sampleRevisions, "options": map[string]any{"viz_type": "tower"}}, http.StatusBadRequest},
		{"all empty", map[string]any{"revisions": []revision.Revision{{Tag: "v0"}}}, http.StatusBadRequest},
		{"unknown base", map[string]any{"revisions": sampleRevisions, "continue_from": "00000000-0000-0000-0000-000000000000"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/timelines", tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/timelines", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", w.Code)
	}
}

func TestContinueTimeline(t *testing.T) {
	h := testServer(t)
	first := createTimeline(t, h, map[string]any{"revisions": sampleRevisions[:1]})
	next := createTimeline(t, h, map[string]any{
		"revisions":     sampleRevisions[1:],
		"continue_from": first.ID,
	})
	if next.ID == first.ID || next.Frames != 1 {
		t.Errorf("continued summary = %+v", next)
	}
}

func TestGetFrame(t *testing.T) {
	h := testServer(t)
	sum := createTimeline(t, h, map[string]any{"revisions": sampleRevisions})
	base := "/timelines/" + sum.ID + "/frames/"

	tests := []struct {
		path        string
		status      int
		contentType string
		prefix      string
	}{
		{base + "1", http.StatusOK, "application/json", "{"},
		{base + "0.json", http.StatusOK, "application/json", "{"},
		{base + "1.svg", http.StatusOK, "image/svg+xml", "<svg"},
		{base + "1.svg?title=true&highlight=src/c.go&labels=false", http.StatusOK, "image/svg+xml", "<svg"},
		{base + "5", http.StatusNotFound, "", ""},
		{base + "x.svg", http.StatusBadRequest, "", ""},
		{base + "1.gif", http.StatusBadRequest, "", ""},
		{base + "1.svg?labels=maybe", http.StatusBadRequest, "", ""},
		{"/timelines/missing/frames/0", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.contentType == "" {
				return
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.HasPrefix(w.Body.String(), tt.prefix) {
				t.Errorf("body starts with %.20q", w.Body.String())
			}
		})
	}
}

func TestDeleteTimeline(t *testing.T) {
	h := testServer(t)
	sum := createTimeline(t, h, map[string]any{"revisions": sampleRevisions})

	if w := do(t, h, http.MethodDelete, "/timelines/"+sum.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/timelines/"+sum.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/timelines/"+sum.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("second delete status = %d", w.Code)
	}
}
