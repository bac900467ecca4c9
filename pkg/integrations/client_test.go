package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/treerings/pkg/cache"
	perrors "github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/observability"
)

type tagResponse struct {
	Name string `json:"name"`
}

func newTestClient(t *testing.T, c cache.Cache, headers map[string]string) *Client {
	t.Helper()
	client := NewClient(c, "test:", time.Hour, headers)
	client.backoff = cache.Backoff{Attempts: 3, Delay: time.Millisecond, MaxDelay: 20 * time.Millisecond}
	return client
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte(`{"name":"v1.0.0"}`))
	}))
	defer server.Close()

	var got tagResponse
	if err := newTestClient(t, nil, nil).Get(context.Background(), server.URL, &got); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "v1.0.0" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestClientHeaders(t *testing.T) {
	var seen http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, nil, map[string]string{
		"Authorization": "Bearer token",
		"User-Agent":    "custom/1.0",
	})
	var v map[string]any
	if err := client.Get(context.Background(), server.URL, &v); err != nil {
		t.Fatal(err)
	}
	if seen.Get("Authorization") != "Bearer token" {
		t.Errorf("Authorization = %q", seen.Get("Authorization"))
	}
	if seen.Get("User-Agent") != "custom/1.0" {
		t.Errorf("client headers should override the default User-Agent, got %q", seen.Get("User-Agent"))
	}
}

func TestClientDefaultUserAgent(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var v map[string]any
	if err := newTestClient(t, nil, nil).Get(context.Background(), server.URL, &v); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ua, "treerings/") {
		t.Errorf("User-Agent = %q, want treerings/...", ua)
	}
}

func TestClientGetErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		retryable bool
	}{
		{"not found", http.StatusNotFound, "", ErrNotFound, false},
		{"server error", http.StatusInternalServerError, "", ErrNetwork, true},
		{"bad gateway", http.StatusBadGateway, "", ErrNetwork, true},
		{"bad request", http.StatusBadRequest, "", ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var v map[string]any
			err := newTestClient(t, nil, nil).Get(context.Background(), server.URL, &v)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Get() = %v, want %v", err, tt.wantErr)
			}
			if got := cache.IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestClientGetInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":`))
	}))
	defer server.Close()

	var v tagResponse
	err := newTestClient(t, nil, nil).Get(context.Background(), server.URL, &v)
	if !perrors.Is(err, perrors.ErrCodeInvalidFormat) {
		t.Errorf("Get() = %v, want INVALID_FORMAT", err)
	}
}

func TestClientRateLimited(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		limited   bool
		wait      int
		retryable bool
	}{
		{"quota exhausted", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, true, 0, false},
		{"retry after", http.StatusTooManyRequests, map[string]string{"Retry-After": "30"}, true, 30, true},
		{"plain forbidden", http.StatusForbidden, nil, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			var v map[string]any
			err := newTestClient(t, nil, nil).Get(context.Background(), server.URL, &v)
			var rl *perrors.RateLimitedError
			if got := errors.As(err, &rl); got != tt.limited {
				t.Fatalf("rate limited = %v, want %v (err %v)", got, tt.limited, err)
			}
			if tt.limited && rl.RetryAfter != tt.wait {
				t.Errorf("RetryAfter = %d, want %d", rl.RetryAfter, tt.wait)
			}
			if got := cache.IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets atomic.Int32
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits.Add(1) }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses.Add(1) }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets.Add(1) }

func TestClientCached(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"name":"v2.0.0"}`))
	}))
	defer server.Close()

	hooks := &countingCacheHooks{}
	ctx := observability.WithHooks(context.Background(), observability.Hooks{Cache: hooks})
	client := newTestClient(t, c, nil)

	fetch := func(refresh bool) tagResponse {
		t.Helper()
		var v tagResponse
		err := client.Cached(ctx, "tags", refresh, &v, func() error {
			return client.Get(ctx, server.URL, &v)
		})
		if err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
		return v
	}

	if v := fetch(false); v.Name != "v2.0.0" {
		t.Errorf("first fetch = %+v", v)
	}
	if v := fetch(false); v.Name != "v2.0.0" {
		t.Errorf("cached fetch = %+v", v)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("requests after cache hit = %d, want 1", n)
	}
	fetch(true)
	if n := requests.Load(); n != 2 {
		t.Errorf("requests after refresh = %d, want 2", n)
	}

	if hooks.hits.Load() != 1 || hooks.misses.Load() != 1 || hooks.sets.Load() != 2 {
		t.Errorf("hooks hits=%d misses=%d sets=%d, want 1/1/2",
			hooks.hits.Load(), hooks.misses.Load(), hooks.sets.Load())
	}
}

func TestClientCachedRetries(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"name":"v3"}`))
	}))
	defer server.Close()

	client := newTestClient(t, nil, nil)
	var v tagResponse
	err := client.Cached(context.Background(), "flaky", false, &v, func() error {
		return client.Get(context.Background(), server.URL, &v)
	})
	if err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if v.Name != "v3" || requests.Load() != 3 {
		t.Errorf("got %+v after %d requests", v, requests.Load())
	}
}

func TestClientCachedFetchError(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	client := newTestClient(t, c, nil)

	var v tagResponse
	err = client.Cached(context.Background(), "missing", false, &v, func() error {
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Cached() = %v, want ErrNotFound", err)
	}
	if _, ok, _ := c.Get(context.Background(), "test:missing"); ok {
		t.Error("failed fetch was cached")
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := map[string]string{
		"":                                     "",
		"git@github.com:d3/d3-shape.git":       "https://github.com/d3/d3-shape",
		"git://github.com/d3/d3-shape":         "https://github.com/d3/d3-shape",
		"git+https://github.com/d3/d3-shape":   "https://github.com/d3/d3-shape",
		" https://github.com/d3/d3-shape.git ": "https://github.com/d3/d3-shape",
	}
	for in, want := range tests {
		if got := NormalizeRepoURL(in); got != want {
			t.Errorf("NormalizeRepoURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractRepoURL(t *testing.T) {
	re := regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)`)

	tests := []struct {
		in          string
		owner, repo string
		ok          bool
	}{
		{"https://github.com/d3/d3-shape", "d3", "d3-shape", true},
		{"git@github.com:d3/d3-shape.git", "d3", "d3-shape", true},
		{"https://gitlab.com/d3/d3-shape", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, repo, ok := ExtractRepoURL(re, tt.in)
			if owner != tt.owner || repo != tt.repo || ok != tt.ok {
				t.Errorf("ExtractRepoURL() = %q, %q, %v", owner, repo, ok)
			}
		})
	}
}

func TestPathEscape(t *testing.T) {
	tests := map[string]string{
		"v1.0.0":      "v1.0.0",
		"release/1.0": "release/1.0",
		"a b/c#d":     "a%20b/c%23d",
	}
	for in, want := range tests {
		if got := PathEscape(in); got != want {
			t.Errorf("PathEscape(%q) = %q, want %q", in, got, want)
		}
	}
}
