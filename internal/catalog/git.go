package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
)

// SyncFromGit clones the blueprint repository into dir on first run and pulls
// it on subsequent runs, then reloads the catalog index. The returned version
// is the HEAD commit hash, which becomes the catalog version. Blueprints stay
// frozen per document regardless: a sync never rewrites existing drafts.
func (c *Catalog) SyncFromGit(ctx context.Context, remoteURL, dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return "", fmt.Errorf("create catalog dir: %w", mkErr)
		}
		repo, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: remoteURL, Depth: 1})
		if err != nil {
			return "", fmt.Errorf("clone blueprint repo: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("open blueprint repo: %w", err)
	} else {
		worktree, wtErr := repo.Worktree()
		if wtErr != nil {
			return "", fmt.Errorf("open blueprint worktree: %w", wtErr)
		}
		pullErr := worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if pullErr != nil && !errors.Is(pullErr, git.NoErrAlreadyUpToDate) {
			return "", fmt.Errorf("pull blueprint repo: %w", pullErr)
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("read blueprint repo head: %w", err)
	}
	version := head.Hash().String()

	if err := c.Reload(); err != nil {
		return "", err
	}
	c.setVersion(version)
	return version, nil
}
