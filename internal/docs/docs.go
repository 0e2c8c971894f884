// Package docs renders the per-directory context documents and the root
// document that explains them to coding agents.
package docs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/phobologic/ccb/internal/deps"
	"github.com/phobologic/ccb/internal/model"
)

// MaxFields caps the fields listed per class.
const MaxFields = 10

var (
	sourceExts = []string{".cpp", ".cc", ".c", ".cu"}
	headerExts = []string{".h", ".hpp", ".cuh"}
)

// RenderDirectory renders the document for a non-root directory.
func RenderDirectory(dir *model.Directory) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Directory: %s\n\n", dir.Path)

	if ds := deps.Display(dir.Deps); len(ds) > 0 {
		b.WriteString("## 📦 Dependencies\n")
		b.WriteString(backticked(ds))
		b.WriteString("\n\n")
	}

	writeFiles(&b, dir.Files)
	return b.String()
}

// RenderRoot renders the root document. rootDir holds the files found
// directly at the scan root and may be nil.
func RenderRoot(projectName, outputName string, rootDir *model.Directory) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Project Root: %s\n\n", projectName)
	b.WriteString("## 🤖 Agent Instructions\n")
	b.WriteString("This codebase uses a **Distributed Context System**.\n")
	fmt.Fprintf(&b, "1. Every folder contains a `%s` summarizing its public API.\n", outputName)
	b.WriteString("2. You MUST update these files when you change public symbols.\n\n")

	if rootDir != nil && len(rootDir.Files) > 0 {
		b.WriteString("## Root Level Files\n")
		writeFiles(&b, rootDir.Files)
	}
	return b.String()
}

func writeFiles(b *strings.Builder, files []*model.FileContext) {
	names := make(map[string]struct{}, len(files))
	for _, fc := range files {
		names[path.Base(fc.Path)] = struct{}{}
	}

	for _, fc := range files {
		fname := path.Base(fc.Path)
		fmt.Fprintf(b, "## File: [%s](%s)\n", fname, fname)
		if related := Related(fname, names); len(related) > 0 {
			links := make([]string, len(related))
			for i, r := range related {
				links[i] = fmt.Sprintf("[%s](%s)", r, r)
			}
			fmt.Fprintf(b, "- **Related**: %s\n", strings.Join(links, ", "))
		}

		public := 0
		for i := range fc.Symbols {
			s := &fc.Symbols[i]
			if !s.IsPublic {
				continue
			}
			public++
			writeSymbol(b, s)
		}
		if public == 0 {
			b.WriteString("*No public symbols found.*\n")
		}
		b.WriteString("---\n")
	}
}

func writeSymbol(b *strings.Builder, s *model.Symbol) {
	fmt.Fprintf(b, "### `%s`\n", s.Signature)
	fmt.Fprintf(b, "- **Type**: %s\n", s.Kind)
	fmt.Fprintf(b, "- **Breadcrumb**: %s\n", s.Breadcrumb)
	if len(s.Bases) > 0 {
		fmt.Fprintf(b, "- **Inherits**: %s\n", backticked(s.Bases))
	}
	if len(s.Fields) > 0 {
		fields := s.Fields
		if len(fields) > MaxFields {
			fields = fields[:MaxFields]
		}
		fmt.Fprintf(b, "- **Fields**: %s\n", backticked(fields))
	}
	if len(s.Calls) > 0 {
		fmt.Fprintf(b, "- **Uses**: %s\n", backticked(s.Calls))
	}
	if s.Summary != "" {
		fmt.Fprintf(b, "- **Summary**: %s\n", s.Summary)
	}
	b.WriteString("\n")
}

// Related returns the files in siblings that pair with fname across the
// implementation and header extensions, e.g. widget.cpp and widget.hpp.
func Related(fname string, siblings map[string]struct{}) []string {
	ext := path.Ext(fname)
	base := strings.TrimSuffix(fname, ext)

	var candidates []string
	switch {
	case slices.Contains(sourceExts, ext):
		candidates = headerExts
	case slices.Contains(headerExts, ext):
		candidates = sourceExts
	default:
		return nil
	}

	var out []string
	for _, c := range candidates {
		if _, ok := siblings[base+c]; ok {
			out = append(out, base+c)
		}
	}
	return out
}

// Write renders and stores every document under root: one per non-root
// directory in dirs plus the root document. A document whose stored bytes
// already match is left alone. It returns the paths actually written.
func Write(fs afero.Fs, root string, dirs []*model.Directory, outputName string) ([]string, error) {
	sorted := make([]*model.Directory, len(dirs))
	copy(sorted, dirs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var written []string
	var rootDir *model.Directory
	for _, dir := range sorted {
		if dir.Path == "." {
			rootDir = dir
			continue
		}
		if len(dir.Files) == 0 {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(dir.Path), outputName)
		changed, err := writeIfChanged(fs, target, RenderDirectory(dir))
		if err != nil {
			return written, err
		}
		if changed {
			written = append(written, target)
		}
	}

	target := filepath.Join(root, outputName)
	changed, err := writeIfChanged(fs, target, RenderRoot(projectName(root), outputName, rootDir))
	if err != nil {
		return written, err
	}
	if changed {
		written = append(written, target)
	}
	return written, nil
}

func writeIfChanged(fs afero.Fs, target, content string) (bool, error) {
	existing, err := afero.ReadFile(fs, target)
	if err == nil && bytes.Equal(existing, []byte(content)) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading %s: %w", target, err)
	}
	if err := afero.WriteFile(fs, target, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", target, err)
	}
	return true, nil
}

func projectName(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Base(root)
}

func backticked(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "`" + it + "`"
	}
	return strings.Join(quoted, ", ")
}
