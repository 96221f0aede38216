package ai

import (
	"errors"
	"reflect"
	"testing"

	"github.com/p-n-ai/pai-study/internal/platform/config"
)

func TestNewRouterFromConfig(t *testing.T) {
	cfg := config.AIConfig{
		OpenAI:     config.OpenAIConfig{APIKey: "sk-test"},
		Google:     config.GoogleConfig{APIKey: "AIza-test"},
		Ollama:     config.OllamaConfig{Enabled: true, URL: "http://localhost:11434"},
		OpenRouter: config.OpenRouterConfig{APIKey: "sk-or-test"},
		Anthropic:  config.AnthropicConfig{APIKey: "sk-ant-test"},
	}

	r, err := NewRouterFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewRouterFromConfig() error = %v", err)
	}

	want := []string{"openai", "anthropic", "google", "openrouter", "ollama"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if r.fallback {
		t.Error("fallback should be off unless configured")
	}
}

func TestNewRouterFromConfig_Fallback(t *testing.T) {
	r, err := NewRouterFromConfig(config.AIConfig{
		DeepSeek: config.DeepSeekConfig{APIKey: "sk-ds"},
		Fallback: true,
	})
	if err != nil {
		t.Fatalf("NewRouterFromConfig() error = %v", err)
	}
	if !r.fallback {
		t.Error("fallback should be on")
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"deepseek"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestNewRouterFromConfig_NoProvider(t *testing.T) {
	_, err := NewRouterFromConfig(config.AIConfig{})
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("error = %v, want ErrNoProvider", err)
	}
}
