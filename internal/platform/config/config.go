// Package config loads application configuration from environment variables.
// All variables use the STUDY_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	AI          AIConfig
	Generation  GenerationConfig
	Quiz        QuizConfig
	Log         LogConfig
	CatalogPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL disables generation event persistence.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings.
// An empty URL keeps token budgets in memory.
type CacheConfig struct {
	URL string
}

// AIConfig holds configuration for all AI providers.
type AIConfig struct {
	OpenAI     OpenAIConfig
	Anthropic  AnthropicConfig
	DeepSeek   DeepSeekConfig
	Google     GoogleConfig
	Ollama     OllamaConfig
	OpenRouter OpenRouterConfig

	// Model overrides the primary provider's default model when set.
	// Fallback providers always use their own default.
	Model string
	// Fallback enables trying the next registered provider when one fails.
	Fallback bool
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey string
}

// AnthropicConfig holds Anthropic provider settings.
type AnthropicConfig struct {
	APIKey string
}

// DeepSeekConfig holds DeepSeek provider settings (OpenAI-compatible).
type DeepSeekConfig struct {
	APIKey string
}

// GoogleConfig holds Google Gemini provider settings.
type GoogleConfig struct {
	APIKey string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
}

// OpenRouterConfig holds OpenRouter provider settings.
type OpenRouterConfig struct {
	APIKey string
}

// GenerationConfig controls study plan and quiz generation.
type GenerationConfig struct {
	Timeout          time.Duration
	DefaultQuestions int
	MaxQuestions     int
	MaxTokens        int
	TokenBudget      int64 // per client; 0 means unlimited
}

// QuizConfig controls server-held quiz sessions.
type QuizConfig struct {
	SessionTTL time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with STUDY_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("STUDY_SERVER_PORT", 8080),
			Host: envStr("STUDY_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("STUDY_DATABASE_URL", ""),
			MaxConns: envInt("STUDY_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("STUDY_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("STUDY_CACHE_URL", ""),
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				APIKey: envStr("STUDY_AI_OPENAI_API_KEY", ""),
			},
			Anthropic: AnthropicConfig{
				APIKey: envStr("STUDY_AI_ANTHROPIC_API_KEY", ""),
			},
			DeepSeek: DeepSeekConfig{
				APIKey: envStr("STUDY_AI_DEEPSEEK_API_KEY", ""),
			},
			Google: GoogleConfig{
				APIKey: envStr("STUDY_AI_GOOGLE_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("STUDY_AI_OLLAMA_ENABLED", false),
				URL:     envStr("STUDY_AI_OLLAMA_URL", "http://localhost:11434"),
			},
			OpenRouter: OpenRouterConfig{
				APIKey: envStr("STUDY_AI_OPENROUTER_API_KEY", ""),
			},
			Model:    envStr("STUDY_AI_MODEL", ""),
			Fallback: envBool("STUDY_AI_FALLBACK", false),
		},
		Generation: GenerationConfig{
			Timeout:          envDuration("STUDY_GENERATION_TIMEOUT", 60*time.Second),
			DefaultQuestions: envInt("STUDY_GENERATION_DEFAULT_QUESTIONS", 5),
			MaxQuestions:     envInt("STUDY_GENERATION_MAX_QUESTIONS", 20),
			MaxTokens:        envInt("STUDY_GENERATION_MAX_TOKENS", 2048),
			TokenBudget:      int64(envInt("STUDY_GENERATION_TOKEN_BUDGET", 0)),
		},
		Quiz: QuizConfig{
			SessionTTL: envDuration("STUDY_QUIZ_SESSION_TTL", 2*time.Hour),
		},
		Log: LogConfig{
			Level:  envStr("STUDY_LOG_LEVEL", "info"),
			Format: envStr("STUDY_LOG_FORMAT", "json"),
		},
		CatalogPath: envStr("STUDY_CATALOG_PATH", ""),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !c.HasAIProvider() {
		return fmt.Errorf("at least one AI provider must be configured")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("STUDY_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Generation.DefaultQuestions <= 0 {
		return fmt.Errorf("STUDY_GENERATION_DEFAULT_QUESTIONS must be positive, got %d", c.Generation.DefaultQuestions)
	}
	if c.Generation.MaxQuestions < c.Generation.DefaultQuestions {
		return fmt.Errorf("STUDY_GENERATION_MAX_QUESTIONS (%d) must be >= default (%d)",
			c.Generation.MaxQuestions, c.Generation.DefaultQuestions)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("STUDY_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.OpenAI.APIKey != "" ||
		c.AI.Anthropic.APIKey != "" ||
		c.AI.DeepSeek.APIKey != "" ||
		c.AI.Google.APIKey != "" ||
		c.AI.OpenRouter.APIKey != "" ||
		c.AI.Ollama.Enabled
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
