package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/integrations"
	"github.com/matzehuels/treerings/pkg/revision"
)

const (
	defaultBaseURL     = "https://api.github.com"
	tagsPerPage        = 100
	defaultConcurrency = 4
)

// Client lists tags and fetches tag trees from the GitHub REST API.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client. Responses are cached in c for
// ttl; a nil c disables caching. Pass an empty token for unauthenticated
// requests (60 requests per hour).
func NewClient(c cache.Cache, token string, ttl time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, "github:", ttl, headers),
		baseURL: defaultBaseURL,
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Tags lists all tags of owner/repo in the order GitHub returns them
// (newest first for semver-like names).
func (c *Client) Tags(ctx context.Context, owner, repo string, refresh bool) ([]Tag, error) {
	key := fmt.Sprintf("tags:%s/%s", owner, repo)

	var tags []Tag
	err := c.Cached(ctx, key, refresh, &tags, func() error {
		tags = tags[:0]
		for page := 1; ; page++ {
			var batch []Tag
			url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=%d&page=%d", c.baseURL, owner, repo, tagsPerPage, page)
			if err := c.Get(ctx, url, &batch); err != nil {
				return err
			}
			tags = append(tags, batch...)
			if len(batch) < tagsPerPage {
				return nil
			}
		}
	})
	if err != nil {
		return nil, notFound(err, "github repo %s/%s", owner, repo)
	}
	return tags, nil
}

// Tree fetches the recursive tree of ref (a commit SHA, tag or branch).
func (c *Client) Tree(ctx context.Context, owner, repo, ref string, refresh bool) (*Tree, error) {
	key := fmt.Sprintf("tree:%s/%s@%s", owner, repo, ref)

	var tree Tree
	err := c.Cached(ctx, key, refresh, &tree, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
			c.baseURL, owner, repo, integrations.PathEscape(ref))
		return c.Get(ctx, url, &tree)
	})
	if err != nil {
		return nil, notFound(err, "github tree %s/%s@%s", owner, repo, ref)
	}
	return &tree, nil
}

// Revisions fetches one [revision.Revision] per selected tag, oldest
// first. Trees are fetched concurrently; the result order does not
// depend on completion order.
func (c *Client) Revisions(ctx context.Context, owner, repo string, opts RevisionOptions) ([]revision.Revision, error) {
	tags, err := c.Tags(ctx, owner, repo, opts.Refresh)
	if err != nil {
		return nil, err
	}
	selected, err := selectTags(tags, opts)
	if err != nil {
		return nil, err
	}

	n := opts.Concurrency
	if n <= 0 {
		n = defaultConcurrency
	}
	revs := make([]revision.Revision, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for i, tag := range selected {
		g.Go(func() error {
			tree, err := c.Tree(gctx, owner, repo, tag.Commit.SHA, opts.Refresh)
			if err != nil {
				return fmt.Errorf("tag %s: %w", tag.Name, err)
			}
			revs[i] = toRevision(tag.Name, tree)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return revs, nil
}

// selectTags orders tags oldest first, applying the explicit tag list or
// the limit.
func selectTags(tags []Tag, opts RevisionOptions) ([]Tag, error) {
	if len(opts.Tags) > 0 {
		byName := make(map[string]Tag, len(tags))
		for _, t := range tags {
			byName[t.Name] = t
		}
		out := make([]Tag, 0, len(opts.Tags))
		for _, name := range opts.Tags {
			t, ok := byName[name]
			if !ok {
				return nil, errors.New(errors.ErrCodeRevisionNotFound, "tag %q not found", name)
			}
			out = append(out, t)
		}
		return out, nil
	}

	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[len(tags)-1-i] = t
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[len(out)-opts.Limit:]
	}
	return out, nil
}

// toRevision converts a git tree to a revision. Submodule entries have
// no content of their own and are dropped.
func toRevision(tag string, tree *Tree) revision.Revision {
	rev := revision.Revision{Tag: tag, Tree: make([]revision.Entry, 0, len(tree.Tree))}
	for _, e := range tree.Tree {
		var kind revision.Kind
		switch e.Type {
		case "blob":
			kind = revision.KindBlob
		case "tree":
			kind = revision.KindTree
		default:
			continue
		}
		rev.Tree = append(rev.Tree, revision.Entry{Path: e.Path, Type: kind, Size: e.Size})
	}
	return rev
}

func notFound(err error, format string, args ...any) error {
	if stderrors.Is(err, integrations.ErrNotFound) {
		return errors.Wrap(errors.ErrCodeNotFound, err, format, args...)
	}
	return err
}
