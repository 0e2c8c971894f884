package docs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/ccb/internal/model"
)

func sampleDir() *model.Directory {
	dir := model.NewDirectory("pkg/auth")
	dir.Deps["os"] = struct{}{}
	dir.Deps["hashlib"] = struct{}{}
	dir.Files = []*model.FileContext{
		{
			Path: "pkg/auth/user.py",
			Symbols: []model.Symbol{
				{
					Name:       "User",
					Kind:       model.Class,
					Signature:  "class User(Base):",
					Breadcrumb: "User",
					IsPublic:   true,
					Bases:      []string{"Base"},
					Fields:     []string{"name", "email"},
					Summary:    "A registered account.",
				},
				{
					Name:       "login",
					Kind:       model.Method,
					Signature:  "def login(self, password):",
					Breadcrumb: "User > login",
					IsPublic:   true,
					Calls:      []string{"check_password"},
				},
				{
					Name:       "_hidden",
					Kind:       model.Method,
					Signature:  "def _hidden(self):",
					Breadcrumb: "User > _hidden",
				},
			},
		},
		{Path: "pkg/auth/__init__.py", Symbols: []model.Symbol{}},
	}
	return dir
}

func TestRenderDirectory(t *testing.T) {
	t.Parallel()

	want := "# Directory: pkg/auth\n\n" +
		"## 📦 Dependencies\n" +
		"`hashlib`, `os`\n\n" +
		"## File: [user.py](user.py)\n" +
		"### `class User(Base):`\n" +
		"- **Type**: class\n" +
		"- **Breadcrumb**: User\n" +
		"- **Inherits**: `Base`\n" +
		"- **Fields**: `name`, `email`\n" +
		"- **Summary**: A registered account.\n" +
		"\n" +
		"### `def login(self, password):`\n" +
		"- **Type**: method\n" +
		"- **Breadcrumb**: User > login\n" +
		"- **Uses**: `check_password`\n" +
		"\n" +
		"---\n" +
		"## File: [__init__.py](__init__.py)\n" +
		"*No public symbols found.*\n" +
		"---\n"

	assert.Equal(t, want, RenderDirectory(sampleDir()))
}

func TestRenderDirectoryWithoutDeps(t *testing.T) {
	t.Parallel()

	dir := model.NewDirectory("lib")
	dir.Files = []*model.FileContext{{Path: "lib/a.go"}}

	got := RenderDirectory(dir)
	assert.NotContains(t, got, "Dependencies")
	assert.Contains(t, got, "## File: [a.go](a.go)\n*No public symbols found.*\n---\n")
}

func TestRenderFieldsCapped(t *testing.T) {
	t.Parallel()

	dir := model.NewDirectory("lib")
	dir.Files = []*model.FileContext{{
		Path: "lib/big.go",
		Symbols: []model.Symbol{{
			Name: "Big", Kind: model.Class, Signature: "Big struct {", Breadcrumb: "Big", IsPublic: true,
			Fields: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
		}},
	}}

	got := RenderDirectory(dir)
	assert.Contains(t, got, "- **Fields**: `a`, `b`, `c`, `d`, `e`, `f`, `g`, `h`, `i`, `j`\n")
}

func TestRenderRoot(t *testing.T) {
	t.Parallel()

	header := "# Project Root: demo\n\n" +
		"## 🤖 Agent Instructions\n" +
		"This codebase uses a **Distributed Context System**.\n" +
		"1. Every folder contains a `.context.md` summarizing its public API.\n" +
		"2. You MUST update these files when you change public symbols.\n\n"

	assert.Equal(t, header, RenderRoot("demo", ".context.md", nil))

	root := model.NewDirectory(".")
	root.Files = []*model.FileContext{{Path: "main.go"}}
	assert.Equal(t,
		header+"## Root Level Files\n## File: [main.go](main.go)\n*No public symbols found.*\n---\n",
		RenderRoot("demo", ".context.md", root))
}

func TestRelated(t *testing.T) {
	t.Parallel()

	siblings := map[string]struct{}{
		"widget.cpp": {}, "widget.hpp": {}, "widget.h": {},
		"kernel.cu": {}, "kernel.cuh": {},
		"main.c": {},
	}

	tests := []struct {
		fname string
		want  []string
	}{
		{"widget.cpp", []string{"widget.h", "widget.hpp"}},
		{"widget.hpp", []string{"widget.cpp"}},
		{"kernel.cuh", []string{"kernel.cu"}},
		{"main.c", nil},
		{"widget.py", nil},
	}
	for _, tt := range tests {
		t.Run(tt.fname, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Related(tt.fname, siblings))
		})
	}
}

func TestRenderRelatedLinks(t *testing.T) {
	t.Parallel()

	dir := model.NewDirectory("src")
	dir.Files = []*model.FileContext{{Path: "src/io.c"}, {Path: "src/io.h"}}

	got := RenderDirectory(dir)
	assert.Contains(t, got, "## File: [io.c](io.c)\n- **Related**: [io.h](io.h)\n")
	assert.Contains(t, got, "## File: [io.h](io.h)\n- **Related**: [io.c](io.c)\n")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/pkg/auth", 0o755))

	root := model.NewDirectory(".")
	root.Files = []*model.FileContext{{Path: "main.py"}}
	empty := model.NewDirectory("pkg")
	dirs := []*model.Directory{sampleDir(), root, empty}

	written, err := Write(fs, "/repo", dirs, ".context.md")
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/pkg/auth/.context.md", "/repo/.context.md"}, written)

	data, err := afero.ReadFile(fs, "/repo/pkg/auth/.context.md")
	require.NoError(t, err)
	assert.Equal(t, RenderDirectory(sampleDir()), string(data))

	data, err = afero.ReadFile(fs, "/repo/.context.md")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Project Root: repo\n")
	assert.Contains(t, string(data), "## File: [main.py](main.py)")

	exists, err := afero.Exists(fs, "/repo/pkg/.context.md")
	require.NoError(t, err)
	assert.False(t, exists, "directories without files get no document")

	again, err := Write(fs, "/repo", dirs, ".context.md")
	require.NoError(t, err)
	assert.Empty(t, again, "unchanged documents are not rewritten")
}
