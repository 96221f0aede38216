package generation

import "context"

type clientIDKey struct{}

// WithClientID tags ctx with the key token budgets are tracked under.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// ClientID returns the budget key carried by ctx, or "anonymous".
func ClientID(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok && id != "" {
		return id
	}
	return "anonymous"
}
