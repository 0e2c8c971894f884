package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/phobologic/ccb/internal/config"
	"github.com/phobologic/ccb/internal/registry"
	"github.com/phobologic/ccb/internal/summarize"
)

const (
	sentinelStart = "<!-- ccb:start -->"
	sentinelEnd   = "<!-- ccb:end -->"
)

type initOptions struct {
	provider   string
	model      string
	apiKey     string
	baseURL    string
	output     string
	agentsFile string
	dryRun     bool
}

func newInitCmd(opts *globalOptions) *cobra.Command {
	var in initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure LLM settings and create the settings file",
		Long: `Write the LLM and output settings used by "ccb scan" to the settings file
(default .ccbenv). With --agents-file, also write a ccb usage section into an
agent instructions file such as CLAUDE.md or AGENTS.md. The section is wrapped
in sentinel comments so later runs update it in place without touching
surrounding content.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(afero.NewOsFs(), in, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.provider, "provider", summarize.ProviderOllama, "LLM provider: ollama|openai|lmstudio|llamacpp|gemini|claude|none")
	f.StringVar(&in.model, "model", "llama3", "model name (e.g. gpt-4o, llama3)")
	f.StringVar(&in.apiKey, "api-key", "", "API key (openai, gemini, claude)")
	f.StringVar(&in.baseURL, "base-url", "", "base URL (default depends on provider)")
	f.StringVar(&in.output, "output", ".context.md", "context document file name")
	f.StringVar(&in.agentsFile, "agents-file", "", "also write a ccb section into this file")
	f.BoolVar(&in.dryRun, "dry-run", false, "print what would be written without modifying files")
	return cmd
}

func runInit(fs afero.Fs, in initOptions, opts *globalOptions) error {
	cfg := &config.Config{
		Provider:   strings.ToLower(strings.TrimSpace(in.provider)),
		Model:      strings.TrimSpace(in.model),
		APIKey:     strings.TrimSpace(in.apiKey),
		BaseURL:    strings.TrimSpace(in.baseURL),
		Timeout:    summarize.DefaultTimeout,
		OutputName: strings.TrimSpace(in.output),
		Registry:   registry.DefaultPath,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL(cfg.Provider)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	env, err := renderEnvFile(cfg)
	if err != nil {
		return err
	}

	var section, agents string
	if in.agentsFile != "" {
		section = generateSection(cfg.OutputName)
		existing, err := afero.ReadFile(fs, in.agentsFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", in.agentsFile, err)
		}
		agents = applySection(string(existing), section)
	}

	if in.dryRun {
		_, _ = fmt.Fprintf(opts.stdout, "# %s\n%s", opts.envFile, env)
		if in.agentsFile != "" {
			_, _ = fmt.Fprintf(opts.stdout, "\n# %s\n%s", in.agentsFile, agents)
		}
		return nil
	}

	if err := afero.WriteFile(fs, opts.envFile, []byte(env), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", opts.envFile, err)
	}
	_, _ = fmt.Fprintf(opts.stderr, "wrote %s\n", opts.envFile)

	if in.agentsFile != "" {
		if err := afero.WriteFile(fs, in.agentsFile, []byte(agents), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", in.agentsFile, err)
		}
		_, _ = fmt.Fprintf(opts.stderr, "wrote ccb section to %s\n", in.agentsFile)
	}

	_, _ = fmt.Fprintln(opts.stdout, "You can now run 'ccb scan' to index your codebase.")
	return nil
}

func defaultBaseURL(provider string) string {
	switch provider {
	case summarize.ProviderOllama:
		return summarize.DefaultOllamaURL
	case summarize.ProviderLMStudio, summarize.ProviderLlamaCpp:
		return summarize.DefaultLocalURL
	default:
		return ""
	}
}

// renderEnvFile returns the dotenv document for cfg.
func renderEnvFile(cfg *config.Config) (string, error) {
	body, err := godotenv.Marshal(map[string]string{
		config.KeyProvider: cfg.Provider,
		config.KeyModel:    cfg.Model,
		config.KeyAPIKey:   cfg.APIKey,
		config.KeyBaseURL:  cfg.BaseURL,
		config.KeyOutput:   cfg.OutputName,
	})
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	return "# ccb configuration\n" + body + "\n", nil
}

// generateSection returns the full sentinel-wrapped ccb documentation block.
func generateSection(outputName string) string {
	body := `## ccb: Distributed Context

This codebase uses a **Distributed Context System**. Every folder contains a
` + "`" + outputName + "`" + ` that lists its public symbols with signatures,
breadcrumbs, inherited types, fields, internal calls and one-line summaries.

**How to use it:**

1. **Read ` + "`" + outputName + "`" + ` before opening source files.** Start with the
   root document, then the document of each folder you work in.

2. **Use the ` + "`Uses`" + ` lists to trace call chains** across files instead of
   searching for callers by hand.

3. **Keep the documents in sync.** After changing public symbols, run
   ` + "`ccb scan`" + ` (add ` + "`--no-llm`" + ` to skip summaries). Unchanged files are
   served from the cache in ` + "`.code-index/`" + `.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
