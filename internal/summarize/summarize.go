// Package summarize produces one- or two-sentence intent summaries for code
// symbols using a chat model.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Provider names accepted by New.
const (
	ProviderNone     = "none"
	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderLMStudio = "lmstudio"
	ProviderLlamaCpp = "llamacpp"

	// Hosted providers without a dedicated backend; they are served by the
	// ollama backend like any other unrecognized name.
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

const (
	DefaultOllamaURL = "http://localhost:11434"
	DefaultLocalURL  = "http://localhost:1234/v1"
	DefaultTimeout   = 30 * time.Second
)

const promptTemplate = "Summarize this code from %s. Intent only, 1-2 sentences. No preambles.\n\nCode:\n%s"

// Summarizer returns a summary for code taken from fileContext. The boolean
// is false when no summary is available; failures are never surfaced.
type Summarizer interface {
	Summarize(ctx context.Context, fileContext, code string) (string, bool)
}

// Config selects and configures a backend.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// Noop never produces a summary.
type Noop struct{}

func (Noop) Summarize(context.Context, string, string) (string, bool) {
	return "", false
}

// Chat summarizes through an Eino chat model.
type Chat struct {
	model   model.BaseChatModel
	timeout time.Duration
}

// NewChat wraps m. A non-positive timeout disables the per-request deadline.
func NewChat(m model.BaseChatModel, timeout time.Duration) *Chat {
	return &Chat{model: m, timeout: timeout}
}

// Summarize implements Summarizer.
func (c *Chat) Summarize(ctx context.Context, fileContext, code string) (string, bool) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(promptTemplate, fileContext, code)
	resp, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil || resp == nil {
		return "", false
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", false
	}
	return text, true
}

// New builds the summarizer for cfg.Provider. Unknown providers fall back to
// the ollama backend.
func New(ctx context.Context, cfg Config) (Summarizer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == ProviderNone {
		return Noop{}, nil
	}

	m, err := newChatModel(ctx, provider, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s chat model: %w", provider, err)
	}
	return NewChat(m, cfg.Timeout), nil
}

func newChatModel(ctx context.Context, provider string, cfg Config) (model.BaseChatModel, error) {
	switch provider {
	case ProviderOpenAI, ProviderLMStudio, ProviderLlamaCpp:
		baseURL := cfg.BaseURL
		if baseURL == "" && provider != ProviderOpenAI {
			baseURL = DefaultLocalURL
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  cfg.APIKey,
			BaseURL: baseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})

	default:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	}
}
