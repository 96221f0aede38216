package ai

import (
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-study/internal/platform/config"
)

// NewRouterFromConfig registers every configured provider in a fixed order:
// OpenAI, Anthropic, DeepSeek, Google, OpenRouter, then Ollama.
func NewRouterFromConfig(cfg config.AIConfig) (*Router, error) {
	r := NewRouter(WithFallback(cfg.Fallback))

	if cfg.OpenAI.APIKey != "" {
		r.Register("openai", NewOpenAIProvider(cfg.OpenAI.APIKey))
	}
	if cfg.Anthropic.APIKey != "" {
		p, err := NewAnthropicProvider(cfg.Anthropic.APIKey)
		if err != nil {
			return nil, fmt.Errorf("creating anthropic provider: %w", err)
		}
		r.Register("anthropic", p)
	}
	if cfg.DeepSeek.APIKey != "" {
		r.Register("deepseek", NewDeepSeekProvider(cfg.DeepSeek.APIKey))
	}
	if cfg.Google.APIKey != "" {
		r.Register("google", NewGoogleProvider(cfg.Google.APIKey))
	}
	if cfg.OpenRouter.APIKey != "" {
		r.Register("openrouter", NewOpenRouterProvider(cfg.OpenRouter.APIKey))
	}
	if cfg.Ollama.Enabled {
		r.Register("ollama", NewOllamaProvider(cfg.Ollama.URL))
	}

	if !r.HasProvider() {
		return nil, ErrNoProvider
	}
	slog.Info("AI providers registered", "providers", r.Names(), "fallback", cfg.Fallback)
	return r, nil
}
