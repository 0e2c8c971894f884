// Package config resolves scan settings from the process environment, the
// project's .ccbenv file and built-in defaults, in that order of precedence.
// Command-line flags bound through Load take priority over all three.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phobologic/ccb/internal/registry"
	"github.com/phobologic/ccb/internal/summarize"
)

// EnvFile is the per-project settings file.
const EnvFile = ".ccbenv"

// Setting keys as they appear in the environment and in EnvFile.
const (
	KeyProvider   = "LLM_PROVIDER"
	KeyModel      = "LLM_MODEL"
	KeyBaseURL    = "LLM_BASE_URL"
	KeyAPIKey     = "LLM_API_KEY"
	KeyTimeout    = "LLM_TIMEOUT"
	KeyOutput     = "OUTPUT_FILE_NAME"
	KeyInclude    = "INCLUDE_PATTERNS"
	KeyExclude    = "EXCLUDE_PATTERNS"
	KeyRegistry   = "REGISTRY_PATH"
	KeyPruneStale = "PRUNE_STALE"
)

const (
	DefaultInclude = "**/*.ts,**/*.tsx,**/*.js,**/*.jsx,**/*.py,**/*.go,**/*.java," +
		"**/*.c,**/*.h,**/*.cc,**/*.cpp,**/*.hpp,**/*.cu,**/*.cuh"
	DefaultExclude = "**/node_modules/**,**/dist/**,**/build/**,**/.git/**"
)

var defaults = map[string]string{
	KeyProvider:   summarize.ProviderOllama,
	KeyModel:      "llama3",
	KeyBaseURL:    "",
	KeyAPIKey:     "",
	KeyTimeout:    "30s",
	KeyOutput:     ".context.md",
	KeyInclude:    DefaultInclude,
	KeyExclude:    DefaultExclude,
	KeyRegistry:   registry.DefaultPath,
	KeyPruneStale: "false",
}

// flagKeys maps command-line flag names onto setting keys.
var flagKeys = map[string]string{
	"output": KeyOutput,
	"prune":  KeyPruneStale,
}

// Config is the resolved configuration of one run.
type Config struct {
	Provider   string `validate:"required,oneof=none ollama openai lmstudio llamacpp gemini claude"`
	Model      string `validate:"required_unless=Provider none"`
	BaseURL    string `validate:"omitempty,url"`
	APIKey     string
	Timeout    time.Duration `validate:"gt=0"`
	OutputName string        `validate:"required,excludesall=/\\"`
	Include    []string
	Exclude    []string
	Registry   string `validate:"required"`
	PruneStale bool
}

// apiKeyProviders are the hosted providers that need LLM_API_KEY.
var apiKeyProviders = []string{
	summarize.ProviderOpenAI,
	summarize.ProviderGemini,
	summarize.ProviderClaude,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateAPIKey, Config{})
	return v
}

func validateAPIKey(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.APIKey == "" && slices.Contains(apiKeyProviders, c.Provider) {
		sl.ReportError(c.APIKey, "APIKey", "APIKey", "required", "")
	}
}

// Load resolves the configuration of one run. The dotenv file at envPath is
// read through fs when present. flags may be nil; only flags the user
// actually set override the other sources. A --no-llm flag forces the
// provider to none.
func Load(fs afero.Fs, envPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	fileValues, err := readEnvFile(fs, envPath)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(fileValues); err != nil {
		return nil, fmt.Errorf("merging %s: %w", envPath, err)
	}

	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Provider:   strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider))),
		Model:      strings.TrimSpace(v.GetString(KeyModel)),
		BaseURL:    strings.TrimSpace(v.GetString(KeyBaseURL)),
		APIKey:     strings.TrimSpace(v.GetString(KeyAPIKey)),
		Timeout:    timeout,
		OutputName: strings.TrimSpace(v.GetString(KeyOutput)),
		Include:    SplitPatterns(v.GetString(KeyInclude)),
		Exclude:    SplitPatterns(v.GetString(KeyExclude)),
		Registry:   strings.TrimSpace(v.GetString(KeyRegistry)),
		PruneStale: v.GetBool(KeyPruneStale),
	}

	if flags != nil {
		if noLLM, err := flags.GetBool("no-llm"); err == nil && noLLM {
			cfg.Provider = summarize.ProviderNone
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values a scan cannot run with.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %q)", e.Field(), e.Tag(), fmt.Sprint(e.Value())))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Summarizer returns the summarization backend settings.
func (c *Config) Summarizer() summarize.Config {
	return summarize.Config{
		Provider: c.Provider,
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey,
		Timeout:  c.Timeout,
	}
}

// RegistryPath resolves the registry location against the scan root.
func (c *Config) RegistryPath(root string) string {
	if filepath.IsAbs(c.Registry) {
		return c.Registry
	}
	return filepath.Join(root, filepath.FromSlash(c.Registry))
}

// SplitPatterns splits a comma-separated pattern list, dropping blanks.
func SplitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readEnvFile parses path as a dotenv file. A missing file yields no values.
func readEnvFile(fs afero.Fs, path string) (map[string]any, error) {
	f, err := fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	values := make(map[string]any, len(parsed))
	for k, val := range parsed {
		values[k] = val
	}
	return values, nil
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: want a duration such as 30s", KeyTimeout, s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
