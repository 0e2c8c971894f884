package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/phobologic/ccb/internal/config"
)

// TestApplySectionCreate verifies that applySection on empty content wraps the
// section in sentinels with a trailing newline.
func TestApplySectionCreate(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("", section)
	if got != "\n"+section+"\n" {
		t.Errorf("unexpected content: %q", got)
	}
}

// TestApplySectionAppend verifies that existing content without a sentinel block
// is preserved and the section is appended.
func TestApplySectionAppend(t *testing.T) {
	t.Parallel()
	existing := "# My Project\n\nSome existing content."
	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(existing, section)

	if !strings.HasPrefix(got, existing+"\n\n") {
		t.Errorf("existing content should be preserved and separated:\n%s", got)
	}
	if !strings.HasSuffix(got, section+"\n") {
		t.Error("section should be appended")
	}
}

// TestApplySectionUpdate verifies that an existing sentinel block is replaced
// precisely, leaving surrounding content intact.
func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()
	before := "# Project\n\n"
	after := "\n\n## Other Section\n"
	old := before + sentinelStart + "\nold content\n" + sentinelEnd + after

	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(old, section)

	if got != before+section+after {
		t.Errorf("unexpected content:\n%s", got)
	}
}

func TestGenerateSectionNamesOutputFile(t *testing.T) {
	t.Parallel()
	section := generateSection("AGENT_CONTEXT.md")

	if !strings.HasPrefix(section, sentinelStart+"\n") || !strings.HasSuffix(section, "\n"+sentinelEnd) {
		t.Error("section must be wrapped in sentinels")
	}
	for _, want := range []string{"`AGENT_CONTEXT.md`", "ccb scan", "--no-llm"} {
		if !strings.Contains(section, want) {
			t.Errorf("section missing %q", want)
		}
	}
}

func TestDefaultBaseURL(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"ollama":   "http://localhost:11434",
		"lmstudio": "http://localhost:1234/v1",
		"llamacpp": "http://localhost:1234/v1",
		"openai":   "",
		"none":     "",
	}
	for provider, want := range cases {
		if got := defaultBaseURL(provider); got != want {
			t.Errorf("defaultBaseURL(%q) = %q, want %q", provider, got, want)
		}
	}
}

// TestInitWritesEnvFile verifies that the written settings load back through
// the config package.
func TestInitWritesEnvFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".ccbenv")

	out, stderr, err := runCLI(t, dir, "--env-file", envFile, "init",
		"--provider", "lmstudio", "--model", "qwen2.5-coder", "--output", "CONTEXT.md")
	if err != nil {
		t.Fatalf("init: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(out, "ccb scan") {
		t.Errorf("missing next-step hint: %s", out)
	}

	data, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatalf("settings file not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "# ccb configuration\n") {
		t.Errorf("missing header:\n%s", data)
	}

	cfg, err := config.Load(afero.NewOsFs(), envFile, nil)
	if err != nil {
		t.Fatalf("loading written settings: %v", err)
	}
	if cfg.Provider != "lmstudio" || cfg.Model != "qwen2.5-coder" || cfg.OutputName != "CONTEXT.md" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("base URL = %q", cfg.BaseURL)
	}
}

func TestInitRejectsInvalidSettings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".ccbenv")

	cases := [][]string{
		{"--provider", "skynet"},
		{"--provider", "openai", "--model", "gpt-4o"},
		{"--provider", "gemini", "--model", "gemini-1.5-flash"},
		{"--output", "docs/context.md"},
	}
	for _, args := range cases {
		full := append([]string{"--env-file", envFile, "init"}, args...)
		if _, _, err := runCLI(t, dir, full...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
	if _, err := os.Stat(envFile); err == nil {
		t.Error("invalid settings must not be written")
	}
}

// TestInitAgentsFile verifies the sentinel section lands in the agents file
// and that a second run replaces it in place.
func TestInitAgentsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".ccbenv")
	agents := filepath.Join(dir, "CLAUDE.md")
	writeTestFile(t, dir, "CLAUDE.md", "# My Project\n")

	for i := 0; i < 2; i++ {
		if _, stderr, err := runCLI(t, dir, "--env-file", envFile, "init", "--agents-file", agents); err != nil {
			t.Fatalf("run %d: %v\nstderr: %s", i, err, stderr)
		}
	}

	content := readTestFile(t, dir, "CLAUDE.md")
	if !strings.HasPrefix(content, "# My Project\n") {
		t.Errorf("existing content lost:\n%s", content)
	}
	if n := strings.Count(content, sentinelStart); n != 1 {
		t.Errorf("expected one ccb section, found %d", n)
	}
}

// TestInitDryRun verifies that --dry-run prints both documents and writes
// nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".ccbenv")
	agents := filepath.Join(dir, "AGENTS.md")

	out, _, err := runCLI(t, dir, "--env-file", envFile, "init", "--dry-run", "--agents-file", agents)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, want := range []string{`LLM_PROVIDER="ollama"`, `LLM_BASE_URL="http://localhost:11434"`, sentinelStart} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
	for _, p := range []string{envFile, agents} {
		if _, err := os.Stat(p); err == nil {
			t.Errorf("--dry-run must not create %s", p)
		}
	}
}
