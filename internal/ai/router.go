package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoProvider is returned when a request reaches a router with nothing registered.
var ErrNoProvider = errors.New("no AI provider registered")

// Router dispatches completions to registered providers in registration order.
// Without fallback only the first provider is called, so each request is a
// single call-and-await.
type Router struct {
	providers map[string]Provider
	order     []string
	fallback  bool
	mu        sync.RWMutex
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithFallback makes the router try the next provider when one fails.
func WithFallback(enabled bool) RouterOption {
	return func(r *Router) {
		r.fallback = enabled
	}
}

// NewRouter creates a new AI router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		providers: make(map[string]Provider),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a provider to the router. Re-registering a name replaces the
// provider but keeps its original position.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = provider
}

// Complete routes a request to the first provider, or along the fallback chain
// when fallback is enabled. req.Model is only sent to the first provider;
// fallbacks use their own default model.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	candidates := r.candidates()
	if len(candidates) == 0 {
		return CompletionResponse{}, ErrNoProvider
	}

	var errs []error
	for i, name := range candidates {
		provider := r.provider(name)
		if i > 0 {
			req.Model = ""
		}

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			slog.Warn("AI provider failed",
				"provider", name,
				"task", req.Task.String(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		resp.Provider = name
		slog.Debug("AI request completed",
			"provider", name,
			"task", req.Task.String(),
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("AI completion failed: %w", errors.Join(errs...))
}

// StreamComplete streams from the first provider. Streams are not retried on
// another provider because chunks may already have been delivered.
func (r *Router) StreamComplete(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	candidates := r.candidates()
	if len(candidates) == 0 {
		return nil, ErrNoProvider
	}
	return r.provider(candidates[0]).StreamComplete(ctx, req)
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// Names returns registered provider names in routing order.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Models returns the models a registered provider offers, or nil if name is
// not registered.
func (r *Router) Models(name string) []ModelInfo {
	p := r.provider(name)
	if p == nil {
		return nil
	}
	return p.Models()
}

// HealthCheck checks the primary provider.
func (r *Router) HealthCheck(ctx context.Context) error {
	candidates := r.candidates()
	if len(candidates) == 0 {
		return ErrNoProvider
	}
	return r.provider(candidates[0]).HealthCheck(ctx)
}

func (r *Router) candidates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 {
		return nil
	}
	if !r.fallback {
		return r.order[:1]
	}
	return append([]string(nil), r.order...)
}

func (r *Router) provider(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}
