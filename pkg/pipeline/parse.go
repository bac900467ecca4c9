package pipeline

import (
	"context"
	"os"

	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/integrations/github"
	"github.com/matzehuels/treerings/pkg/revision"
)

// Source names where revisions come from. Exactly one of File, GitDir
// and GitHub must be set.
type Source struct {
	File   string `json:"file,omitempty"`    // revisions document (JSON or YAML)
	GitDir string `json:"git_dir,omitempty"` // local repository, one revision per tag
	GitHub string `json:"github,omitempty"`  // "owner/repo" or a GitHub URL

	Tags    []string `json:"tags,omitempty"`    // restrict to these tags, in order
	Limit   int      `json:"limit,omitempty"`   // keep the newest Limit tags
	History bool     `json:"history,omitempty"` // attach commit metadata (git only)
}

// String describes the source for logs and stored timelines.
func (s Source) String() string {
	switch {
	case s.File != "":
		return s.File
	case s.GitDir != "":
		return "git:" + s.GitDir
	case s.GitHub != "":
		return "github:" + s.GitHub
	}
	return ""
}

// Validate checks that exactly one origin is set.
func (s Source) Validate() error {
	n := 0
	for _, v := range []string{s.File, s.GitDir, s.GitHub} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of file, git or github must be set")
	}
	if s.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must not be negative")
	}
	return nil
}

// Load reads the revisions named by src. GitHub responses go through c;
// a nil cache disables response caching.
func Load(ctx context.Context, c cache.Cache, src Source, opts Options) ([]revision.Revision, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	var revs []revision.Revision
	var err error
	switch {
	case src.File != "":
		revs, err = loadFile(src)
	case src.GitDir != "":
		revs, err = revision.FromGit(ctx, src.GitDir, revision.GitOptions{
			Tags:    src.Tags,
			Limit:   src.Limit,
			History: src.History,
		})
	default:
		revs, err = loadGitHub(ctx, c, src, opts)
	}
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("loaded revisions", "source", src.String(), "count", len(revs))
	}
	return revs, nil
}

func loadFile(src Source) ([]revision.Revision, error) {
	revs, err := revision.ReadFile(src.File)
	if err != nil {
		return nil, err
	}
	if len(src.Tags) > 0 {
		picked := make([]revision.Revision, 0, len(src.Tags))
		for _, tag := range src.Tags {
			i := revision.Index(revs, tag)
			if i < 0 {
				return nil, errors.New(errors.ErrCodeRevisionNotFound, "revision %q not found in %s", tag, src.File)
			}
			picked = append(picked, revs[i])
		}
		revs = picked
	}
	if src.Limit > 0 && len(revs) > src.Limit {
		revs = revs[len(revs)-src.Limit:]
	}
	return revs, nil
}

func loadGitHub(ctx context.Context, c cache.Cache, src Source, opts Options) ([]revision.Revision, error) {
	owner, repo, err := github.ParseRepo(src.GitHub)
	if err != nil {
		return nil, err
	}
	token := opts.GitHubToken
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	client := github.NewClient(c, token, cache.TTLHTTP)
	return client.Revisions(ctx, owner, repo, github.RevisionOptions{
		Tags:    src.Tags,
		Limit:   src.Limit,
		Refresh: opts.Refresh,
	})
}
