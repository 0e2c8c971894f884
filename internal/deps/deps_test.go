package deps

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func extract(content string) []string {
	set := make(map[string]struct{})
	Extract([]byte(content), set)
	return Display(set)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"python import", "import os\nimport os.path\n", []string{"os", "os.path"}},
		{"python from", "from pathlib import Path\n", []string{"pathlib"}},
		{"include angle", "#include <vector>\n", []string{"vector"}},
		{"include quoted", "#include \"net/socket.h\"\n", []string{"net/socket.h"}},
		{"ecmascript", "import { x } from '@scope/pkg'\n", []string{"@scope/pkg"}},
		{"ecmascript default", "import React from 'react'\n", []string{"React", "react"}},
		{"java", "import java.util.List;\n", []string{"java.util.List"}},
		{"go single", "import \"fmt\"\n", []string{"fmt"}},
		{"go block", "import (\n\t\"fmt\"\n\tlog \"github.com/x/log\"\n)\n", []string{"fmt", "github.com/x/log"}},
		{"not line anchored", "x = 1  # import os\n", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extract(tt.content))
		})
	}
}

func TestExtractAccumulatesAcrossFiles(t *testing.T) {
	t.Parallel()

	set := make(map[string]struct{})
	Extract([]byte("import os\n"), set)
	Extract([]byte("import sys\nimport os\n"), set)
	assert.Equal(t, []string{"os", "sys"}, Display(set))
}

func TestDisplayCaps(t *testing.T) {
	t.Parallel()

	set := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		set[fmt.Sprintf("mod%02d", i)] = struct{}{}
	}
	got := Display(set)
	assert.Len(t, got, MaxDisplayed)
	assert.Equal(t, "mod00", got[0])
	assert.Equal(t, "mod14", got[MaxDisplayed-1])
}
