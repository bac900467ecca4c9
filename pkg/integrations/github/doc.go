// Package github fetches tag trees from the GitHub REST API and turns
// them into revisions.
//
// # Usage
//
//	client := github.NewClient(c, os.Getenv("GITHUB_TOKEN"), cache.TTLHTTP)
//	revs, err := client.Revisions(ctx, "pallets", "flask", github.RevisionOptions{Limit: 10})
//
// [Client.Tags] lists tags, [Client.Tree] fetches the recursive tree of
// one commit (the same shape the JSON revision files use), and
// [Client.Revisions] combines both, fetching trees in parallel and
// returning them oldest first.
//
// # Authentication
//
// A token is optional. Unauthenticated clients are limited to 60
// requests per hour; an exhausted quota is reported as
// [errors.RateLimitedError].
//
// # Caching
//
// Tag lists and trees are cached through the [cache.Cache] passed to
// [NewClient]. Trees of a commit never change, so a long TTL is safe;
// pass Refresh to re-list tags.
//
// [errors.RateLimitedError]: github.com/matzehuels/treerings/pkg/errors.RateLimitedError
// [cache.Cache]: github.com/matzehuels/treerings/pkg/cache.Cache
package github
