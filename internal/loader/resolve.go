package loader

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// standardLayouts are source roots probed inside a cloned repository, in order.
var standardLayouts = []string{
	filepath.Join("src", "main", "java"),
	"src",
}

// Resolve takes an input (local directory or git URL) and returns a local
// directory ready for analysis, plus a cleanup function.
func Resolve(ctx context.Context, input string, logger *slog.Logger) (dir string, cleanup func(), err error) {
	cleanup = func() {} // default no-op

	if IsRemote(input) {
		return fetchRepo(ctx, input, logger)
	}

	absPath, err := filepath.Abs(input)
	if err != nil {
		return "", cleanup, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", cleanup, fmt.Errorf("%w: %s", ErrRootNotExist, absPath)
	}
	if err != nil {
		return "", cleanup, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return "", cleanup, fmt.Errorf("%w: %s", ErrRootNotDir, absPath)
	}

	logger.Info("resolved local directory", "input", input, "root", absPath)
	return absPath, cleanup, nil
}

// IsRemote reports whether input names a git remote rather than a local path.
func IsRemote(input string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git@"} {
		if strings.HasPrefix(input, prefix) {
			return true
		}
	}
	return false
}

// cacheDir returns a stable directory for caching a cloned repo.
// Uses ~/.cache/javadeps/repos/<hash> where hash is derived from the URL.
func cacheDir(url string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	h := sha256.Sum256([]byte(url))
	name := fmt.Sprintf("%x", h[:8])
	return filepath.Join(home, ".cache", "javadeps", "repos", name), nil
}

// fetchRepo either pulls an existing cached clone or does a fresh clone.
// Returns the source root and a no-op cleanup (cache is persistent).
func fetchRepo(ctx context.Context, url string, logger *slog.Logger) (string, func(), error) {
	noop := func() {}

	dir, err := cacheDir(url)
	if err != nil {
		return "", noop, err
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return cloneRepo(ctx, url, dir, logger)
	}

	// Cached clone exists, pull latest
	logger.Info("updating cached repository", "url", url, "dir", dir)
	wt, err := repo.Worktree()
	if err != nil {
		logger.Warn("opening worktree failed, will re-clone", "error", err)
		_ = os.RemoveAll(dir)
		return cloneRepo(ctx, url, dir, logger)
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: "origin", Depth: 1, Force: true})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		logger.Warn("git pull failed, will re-clone", "error", err)
		_ = os.RemoveAll(dir)
		return cloneRepo(ctx, url, dir, logger)
	}
	logger.Info("repository updated", "dir", dir)

	root := findSourceRoot(dir)
	logger.Info("found source root", "root", root)
	return root, noop, nil
}

func cloneRepo(ctx context.Context, url, dir string, logger *slog.Logger) (string, func(), error) {
	noop := func() {}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", noop, fmt.Errorf("creating cache dir: %w", err)
	}

	logger.Info("cloning repository", "url", url, "dest", dir)

	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", noop, fmt.Errorf("git clone: %w", err)
	}

	logger.Info("clone complete", "dest", dir)

	root := findSourceRoot(dir)
	logger.Info("found source root", "root", root)
	return root, noop, nil
}

// findSourceRoot returns the first standard Java source layout under dir,
// or dir itself when none exists.
func findSourceRoot(dir string) string {
	for _, layout := range standardLayouts {
		candidate := filepath.Join(dir, layout)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return dir
}
