// Package discover finds parseable source files in a repository.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/phobologic/ccb/internal/lang"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to the scan root, slash-separated
	Language string
}

// Options narrows discovery. Patterns use gitignore syntax and are matched
// against root-relative paths. An empty Include accepts every file with a
// supported extension.
type Options struct {
	Include []string
	Exclude []string
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	".code-index":   {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"build":         {},
	"dist":          {},
	"vendor":        {},
	".tox":          {},
	".mypy_cache":   {},
	".ruff_cache":   {},
	".pytest_cache": {},
	"egg-info":      {},
}

// Files discovers parseable source files under root, sorted by path.
func Files(fs afero.Fs, root string, opts Options) ([]FileEntry, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", root)
	}

	include := compile(opts.Include)
	exclude := compile(opts.Exclude)
	gi, err := loadGitignore(fs, root)
	if err != nil {
		return nil, err
	}
	var results []FileEntry

	err = afero.Walk(fs, root, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := fi.Name()

		if fi.IsDir() {
			if p == root {
				return nil
			}
			if _, ok := skipDirs[name]; ok || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}

		// Skip symlinks
		if fi.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if include != nil && !include.MatchesPath(rel) {
			return nil
		}
		if exclude != nil && exclude.MatchesPath(rel) {
			return nil
		}

		langName := lang.ForExtension(path.Ext(rel))
		if langName == "" {
			return nil
		}

		results = append(results, FileEntry{Path: rel, Language: langName})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func compile(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

func loadGitignore(fs afero.Fs, root string) (*ignore.GitIgnore, error) {
	data, err := afero.ReadFile(fs, filepath.Join(root, ".gitignore"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	return ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...), nil
}
