package ai

import (
	"context"
	"net/http"
)

// OllamaProvider implements Provider for self-hosted Ollama.
// Ollama exposes an OpenAI-compatible API at /v1/chat/completions.
type OllamaProvider struct {
	baseURL string
	client  *http.Client
	models  []ModelInfo
}

// OllamaOption configures an OllamaProvider.
type OllamaOption func(*OllamaProvider)

// WithOllamaHTTPClient sets a custom HTTP client.
func WithOllamaHTTPClient(client *http.Client) OllamaOption {
	return func(p *OllamaProvider) {
		p.client = client
	}
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, opts ...OllamaOption) *OllamaProvider {
	p := &OllamaProvider{
		baseURL: baseURL,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	oaiReq := newOpenAIRequest(req, "llama3:8b")
	// Local models drift less at their own default temperature.
	oaiReq.Temperature = nil
	return postChatCompletion(ctx, p.client, "ollama", p.baseURL+"/v1/chat/completions", nil, oaiReq)
}

func (p *OllamaProvider) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	return singleChunk(ctx, p.Complete, req)
}

func (p *OllamaProvider) Models() []ModelInfo {
	if p.models != nil {
		return p.models
	}
	return []ModelInfo{
		{ID: "llama3:8b", Name: "Llama 3 8B", MaxTokens: 8192, Description: "Free self-hosted model via Ollama"},
	}
}

func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	return getHealth(ctx, p.client, p.baseURL+"/api/tags", nil)
}
