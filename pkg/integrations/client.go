package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/treerings/pkg/buildinfo"
	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/observability"
)

// Client is the HTTP layer shared by remote revision sources. It sends
// the common headers, retries transient failures and caches decoded
// responses.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	prefix  string
	ttl     time.Duration
	headers map[string]string
	backoff cache.Backoff
}

// NewClient creates a Client that stores decoded responses in c under
// keys starting with prefix. headers are sent with every request and may
// be nil.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
		backoff: cache.DefaultBackoff,
	}
}

// Cached decodes the response cached under key into v, or runs fetch,
// which must populate v, and caches v afterwards. Transient fetch errors
// are retried. refresh skips the lookup but still writes the result.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	key = c.prefix + key
	hooks := observability.Cache(ctx)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, "http")
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, "http")
	}
	if err := c.backoff.Retry(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs a GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	body, err := c.doRequest(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", url)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP(ctx)
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := rateLimited(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// rateLimited recognizes GitHub's exhausted-quota responses: 403 or 429
// with X-RateLimit-Remaining: 0, or any 429 carrying Retry-After. A known
// wait makes the error retryable; the backoff gives up on long waits.
func rateLimited(resp *http.Response) error {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	h := resp.Header
	if h.Get("X-RateLimit-Remaining") != "0" && h.Get("Retry-After") == "" {
		return nil
	}
	wait := 0
	if s, err := strconv.Atoi(h.Get("Retry-After")); err == nil {
		wait = s
	} else if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if d := time.Until(time.Unix(reset, 0)); d > 0 {
			wait = int(d.Seconds()) + 1
		}
	}
	err := &errors.RateLimitedError{RetryAfter: wait, Message: resp.Request.URL.Host}
	if wait > 0 {
		return cache.RetryAfter(err, time.Duration(wait)*time.Second)
	}
	return err
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
