// Package integrations provides the shared HTTP client for remote
// revision sources.
//
// # Overview
//
// The only source today is [github], which lists a repository's tags and
// fetches the recursive tree of each tag as a [revision.Revision].
//
// # Shared Infrastructure
//
// [Client] wraps an [http.Client] with:
//   - JSON response caching through any [cache.Cache] (file, Redis or none)
//   - retry with exponential backoff on network errors and 5xx responses
//   - default request headers (Accept, Authorization)
//   - rate-limit detection, surfaced as [errors.RateLimitedError]
//
// [github]: github.com/matzehuels/treerings/pkg/integrations/github
// [revision.Revision]: github.com/matzehuels/treerings/pkg/revision.Revision
// [cache.Cache]: github.com/matzehuels/treerings/pkg/cache.Cache
// [errors.RateLimitedError]: github.com/matzehuels/treerings/pkg/errors.RateLimitedError
package integrations
