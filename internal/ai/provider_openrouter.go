package ai

import (
	"context"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider implements Provider for OpenRouter.
// OpenRouter uses an OpenAI-compatible API with extra HTTP headers.
type OpenRouterProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	models  []ModelInfo
}

// OpenRouterOption configures an OpenRouterProvider.
type OpenRouterOption func(*OpenRouterProvider)

// WithOpenRouterBaseURL sets the base URL (for testing).
func WithOpenRouterBaseURL(url string) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		p.baseURL = url
	}
}

// WithOpenRouterHTTPClient sets a custom HTTP client.
func WithOpenRouterHTTPClient(client *http.Client) OpenRouterOption {
	return func(p *OpenRouterProvider) {
		p.client = client
	}
}

// NewOpenRouterProvider creates a new OpenRouter provider.
func NewOpenRouterProvider(apiKey string, opts ...OpenRouterOption) *OpenRouterProvider {
	p := &OpenRouterProvider{
		apiKey:  apiKey,
		baseURL: defaultOpenRouterBaseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenRouterProvider) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"HTTP-Referer":  "https://pandai.org",
		"X-Title":       "P&AI Study",
	}
}

func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	return postChatCompletion(ctx, p.client, "openrouter", p.baseURL+"/chat/completions",
		p.headers(), newOpenAIRequest(req, "qwen/qwen-2.5-72b-instruct"))
}

func (p *OpenRouterProvider) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	return singleChunk(ctx, p.Complete, req)
}

func (p *OpenRouterProvider) Models() []ModelInfo {
	if p.models != nil {
		return p.models
	}
	return []ModelInfo{
		{ID: "qwen/qwen-2.5-72b-instruct", Name: "Qwen 2.5 72B", MaxTokens: 32768, Description: "Large open-weight model via OpenRouter"},
	}
}

func (p *OpenRouterProvider) HealthCheck(ctx context.Context) error {
	return getHealth(ctx, p.client, p.baseURL+"/models", map[string]string{"Authorization": "Bearer " + p.apiKey})
}
