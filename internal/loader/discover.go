// Package loader finds the Java sources to analyze: it resolves the input to
// a local directory (cloning remote repositories when needed) and walks it
// for source files.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

var (
	// ErrRootNotExist indicates the root path does not exist.
	ErrRootNotExist = errors.New("root path does not exist")

	// ErrRootNotDir indicates the root path is not a directory.
	ErrRootNotDir = errors.New("root path is not a directory")

	// ErrInvalidPattern indicates a glob pattern could not be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// DefaultInclude matches Java sources at any depth.
const DefaultInclude = "**.java"

// skippedDirs are never descended into.
var skippedDirs = map[string]struct{}{
	".git":         {},
	".idea":        {},
	".vscode":      {},
	".gradle":      {},
	"node_modules": {},
	"target":       {},
	"build":        {},
	"out":          {},
}

// File is one discovered source file.
type File struct {
	Path    string // absolute path
	Rel     string // slash-separated path relative to the root
	Content []byte
}

// Options controls discovery.
type Options struct {
	Include []string // glob patterns matched against Rel; DefaultInclude when empty
	Exclude []string
}

// Discover walks root and returns every matching source file with its
// content, sorted by relative path. Any I/O failure is returned as is: the
// caller treats it as fatal.
func Discover(ctx context.Context, root string, opts Options) ([]File, error) {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotExist, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	includes := opts.Include
	if len(includes) == 0 {
		includes = []string{DefaultInclude}
	}
	includeMatchers, err := compileGlobs(includes)
	if err != nil {
		return nil, err
	}
	excludeMatchers, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skippedDirs[d.Name()]; skip || matchAny(excludeMatchers, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !matchAny(includeMatchers, rel) || matchAny(excludeMatchers, rel) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		files = append(files, File{Path: path, Rel: rel, Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// compileGlobs compiles a slice of glob pattern strings into matchers.
func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func matchAny(matchers []glob.Glob, rel string) bool {
	for _, m := range matchers {
		if m.Match(rel) {
			return true
		}
	}
	return false
}
