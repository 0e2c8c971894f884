package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".go", "go"},
		{".java", "java"},
		{".ts", "typescript"},
		{".tsx", "tsx"},
		{".js", "javascript"},
		{".jsx", "javascript"},
		{".c", "c"},
		{".h", "c"},
		{".cpp", "cpp"},
		{".HPP", "cpp"},
		{".cu", "cpp"},
		{".rb", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForExtension(tt.ext))
		})
	}
}

func TestForPath(t *testing.T) {
	t.Parallel()

	require.NotNil(t, ForPath("pkg/server.go"))
	assert.Equal(t, "go", ForPath("pkg/server.go").Name())
	assert.Nil(t, ForPath("Makefile"))
	assert.Nil(t, ForPath("notes.md"))
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"python", "go", "java", "typescript", "tsx", "javascript", "c", "cpp"} {
		a, ok := Languages[name]
		require.True(t, ok, "%s not registered", name)
		assert.NotNil(t, a.Grammar(), "%s grammar", name)
		assert.NotNil(t, NewParser(a), "%s parser", name)
	}
}

func TestPythonVisibility(t *testing.T) {
	t.Parallel()

	py := Languages["python"]
	assert.True(t, py.IsPublic(nil, "helper", nil))
	assert.True(t, py.IsPublic(nil, "__init__", nil))
	assert.False(t, py.IsPublic(nil, "_helper", nil))
}

func TestGoVisibility(t *testing.T) {
	t.Parallel()

	g := Languages["go"]
	assert.True(t, g.IsPublic(nil, "Server", nil))
	assert.False(t, g.IsPublic(nil, "server", nil))
	assert.False(t, g.IsPublic(nil, "", nil))
}

func TestStripComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"// Run starts the server.", "Run starts the server."},
		{"# helper", "helper"},
		{"/* inline */", "inline"},
		{"/**\n * Multi\n * line.\n */", "Multi line."},
		{"//", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripComment(tt.in), "input %q", tt.in)
	}
}

func TestHasToken(t *testing.T) {
	t.Parallel()

	assert.True(t, hasToken("public static void ", "public"))
	assert.False(t, hasToken("@publicApi void ", "public"))
	assert.False(t, hasToken("static int", "public"))
}
