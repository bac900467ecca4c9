package github

import (
	"regexp"
	"strings"

	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/integrations"
)

var (
	ownerPattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
	repoURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/?#]+)`)
)

// ParseRepo accepts "owner/repo" or a GitHub URL in any common form
// (https, git@, git://, with or without .git) and returns its parts.
// Owners follow GitHub's login rules; "." and ".." are not repositories.
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	var ok bool
	if owner, repo, ok = integrations.ExtractRepoURL(repoURLPattern, s); !ok {
		if owner, repo, ok = strings.Cut(s, "/"); !ok {
			return "", "", errors.New(errors.ErrCodeInvalidRepo, "invalid repo %q: use owner/repo", s)
		}
	}
	switch {
	case !ownerPattern.MatchString(owner):
		return "", "", errors.New(errors.ErrCodeInvalidRepo, "invalid owner %q", owner)
	case !repoPattern.MatchString(repo), repo == ".", repo == "..":
		return "", "", errors.New(errors.ErrCodeInvalidRepo, "invalid repository name %q", repo)
	}
	return owner, repo, nil
}
