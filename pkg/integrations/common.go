package integrations

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/matzehuels/treerings/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a repository, tag or tree doesn't exist.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// ExtractRepoURL matches raw against re, which must capture the owner in
// group 1 and the repository in group 2. raw is normalized first so SSH
// and git:// remotes match the same pattern as HTTPS URLs.
func ExtractRepoURL(re *regexp.Regexp, raw string) (owner, repo string, ok bool) {
	m := re.FindStringSubmatch(NormalizeRepoURL(raw))
	if len(m) < 3 {
		return "", "", false
	}
	return m[1], strings.TrimSuffix(m[2], ".git"), true
}

// PathEscape escapes each segment of a slash-separated path, leaving the
// slashes intact. Tag names like "release/1.0" need this.
func PathEscape(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
