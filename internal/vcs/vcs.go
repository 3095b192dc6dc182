// Package vcs drives the git client and inspects repositories with go-git.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-git/v6"
	"github.com/qobs-build/bootstrap/internal/proc"
)

// Git runs git subcommands through a proc.Runner.
type Git struct {
	r   proc.Runner
	exe string
}

func New(r proc.Runner, exe string) *Git {
	return &Git{r: r, exe: exe}
}

func (g *Git) cmd(args ...string) *proc.Cmd {
	return &proc.Cmd{Name: g.exe, Args: args}
}

// SubmoduleUpdate runs "git -C <root> submodule update --init".
func (g *Git) SubmoduleUpdate(ctx context.Context, root string) error {
	return proc.Check(ctx, g.r, g.cmd("-C", root, "submodule", "update", "--init"))
}

// SubmoduleDeinit runs "git submodule deinit ." with stderr discarded. It
// fails harmlessly when no submodule is initialized, so callers may ignore it.
func (g *Git) SubmoduleDeinit(ctx context.Context) error {
	c := g.cmd("submodule", "deinit", ".")
	c.Stderr = io.Discard
	return proc.Check(ctx, g.r, c)
}

// Clean removes ignored files and directories from the working directory.
func (g *Git) Clean(ctx context.Context) error {
	return proc.Check(ctx, g.r, g.cmd("clean", "-dfX"))
}

// DiffStatus runs "git -C <root> diff --exit-code" and returns its status;
// nonzero means the working tree has changes.
func (g *Git) DiffStatus(ctx context.Context, root string) (int, error) {
	return g.r.Run(ctx, g.cmd("-C", root, "diff", "--exit-code"))
}

// FindRoot returns the top of the git worktree containing dir.
func FindRoot(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}
	w, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("could not get worktree: %w", err)
	}
	return filepath.Clean(w.Filesystem.Root()), nil
}

// RootOrDir is FindRoot falling back to dir when dir is not inside a repository.
func RootOrDir(dir string) (string, error) {
	root, err := FindRoot(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return dir, nil
	}
	return root, err
}

// Submodules lists the paths of the submodules declared in root's .gitmodules.
func Submodules(root string) ([]string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, err
	}
	w, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("could not get worktree: %w", err)
	}
	subs, err := w.Submodules()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(subs))
	for _, s := range subs {
		paths = append(paths, s.Config().Path)
	}
	return paths, nil
}
