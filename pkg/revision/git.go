package revision

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/matzehuels/treerings/pkg/errors"
)

// GitOptions configures [FromGit].
type GitOptions struct {
	// Tags restricts the result to these tags, in this order. Empty means
	// every tag, ordered by commit time.
	Tags []string
	// Limit keeps only the most recent Limit tags (0 = no limit).
	Limit int
	// History attaches per-file commit metadata by walking up to
	// MaxCommits commits back from every tag.
	History    bool
	MaxCommits int
}

type taggedCommit struct {
	tag    string
	commit *object.Commit
}

// FromGit reads one revision per tag from the repository at dir.
func FromGit(ctx context.Context, dir string, opts GitOptions) ([]Revision, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open repository %s", dir)
	}

	tagged, err := listTags(repo, opts.Tags)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(tagged) > opts.Limit {
		tagged = tagged[len(tagged)-opts.Limit:]
	}

	revs := make([]Revision, 0, len(tagged))
	for _, tc := range tagged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rev, err := treeRevision(tc)
		if err != nil {
			return nil, err
		}
		if opts.History {
			if err := attachHistory(ctx, repo, tc.commit, &rev, opts.MaxCommits); err != nil {
				return nil, err
			}
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

func listTags(repo *git.Repository, only []string) ([]taggedCommit, error) {
	if len(only) > 0 {
		out := make([]taggedCommit, 0, len(only))
		for _, name := range only {
			ref, err := repo.Reference(plumbing.NewTagReferenceName(name), true)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeRevisionNotFound, err, "tag %s", name)
			}
			c, err := peel(repo, ref.Hash())
			if err != nil {
				return nil, err
			}
			out = append(out, taggedCommit{tag: name, commit: c})
		}
		return out, nil
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	var out []taggedCommit
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		c, err := peel(repo, ref.Hash())
		if err != nil {
			return err
		}
		out = append(out, taggedCommit{tag: ref.Name().Short(), commit: c})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].commit.Committer.When, out[j].commit.Committer.When
		if ti.Equal(tj) {
			return out[i].tag < out[j].tag
		}
		return ti.Before(tj)
	})
	return out, nil
}

// peel resolves annotated and lightweight tags to their commit.
func peel(repo *git.Repository, h plumbing.Hash) (*object.Commit, error) {
	if tag, err := repo.TagObject(h); err == nil {
		c, err := tag.Commit()
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", tag.Name, err)
		}
		return c, nil
	}
	c, err := repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", h, err)
	}
	return c, nil
}

func treeRevision(tc taggedCommit) (Revision, error) {
	tree, err := tc.commit.Tree()
	if err != nil {
		return Revision{}, fmt.Errorf("tree for %s: %w", tc.tag, err)
	}

	rev := Revision{Tag: tc.tag}
	seen := map[string]bool{}
	err = tree.Files().ForEach(func(f *object.File) error {
		e := Entry{Path: f.Name, Type: KindBlob, Size: f.Size}
		for dir := e.Dir(); dir != "" && !seen[dir]; dir = (Entry{Path: dir}).Dir() {
			seen[dir] = true
			rev.Tree = append(rev.Tree, Entry{Path: dir, Type: KindTree})
		}
		rev.Tree = append(rev.Tree, e)
		return nil
	})
	if err != nil {
		return Revision{}, fmt.Errorf("walk tree for %s: %w", tc.tag, err)
	}
	return rev, nil
}

func attachHistory(ctx context.Context, repo *git.Repository, from *object.Commit, rev *Revision, max int) error {
	if max <= 0 {
		max = 500
	}
	index := make(map[string]int, len(rev.Tree))
	for i, e := range rev.Tree {
		if e.Type == KindBlob {
			index[e.Path] = i
		}
	}

	iter, err := repo.Log(&git.LogOptions{From: from.Hash})
	if err != nil {
		return fmt.Errorf("log from %s: %w", rev.Tag, err)
	}
	defer iter.Close()

	n := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n >= max {
			return storer.ErrStop
		}
		n++
		stats, err := c.Stats()
		if err != nil {
			return nil
		}
		for _, s := range stats {
			if i, ok := index[s.Name]; ok {
				rev.Tree[i].Commits = append(rev.Tree[i].Commits, Commit{
					SHA:  c.Hash.String(),
					Date: c.Committer.When,
				})
			}
		}
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return err
	}
	return nil
}
