package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-study/internal/platform/cache"
)

// usageTTL keeps a day bucket around long enough to be inspected the next day.
const usageTTL = 48 * time.Hour

// RedisBudget tracks daily token usage in Redis/Dragonfly so limits hold
// across server replicas.
type RedisBudget struct {
	client *redis.Client
	limit  int64
	now    func() time.Time
}

// NewRedisBudget creates a Redis-backed tracker with a per-client daily limit.
func NewRedisBudget(client *redis.Client, limit int64) *RedisBudget {
	return &RedisBudget{client: client, limit: limit, now: time.Now}
}

func (b *RedisBudget) Check(ctx context.Context, clientID string) (bool, error) {
	if b.limit == 0 {
		return true, nil
	}
	used, err := b.used(ctx, clientID)
	if err != nil {
		return false, err
	}
	return used < b.limit, nil
}

func (b *RedisBudget) Record(ctx context.Context, clientID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	key := b.key(clientID)
	pipe := b.client.TxPipeline()
	pipe.IncrBy(ctx, key, int64(tokens))
	pipe.Expire(ctx, key, usageTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record token usage: %w", err)
	}
	return nil
}

func (b *RedisBudget) Usage(ctx context.Context, clientID string) (int64, int64, error) {
	used, err := b.used(ctx, clientID)
	if err != nil {
		return 0, 0, err
	}
	return used, b.limit, nil
}

func (b *RedisBudget) used(ctx context.Context, clientID string) (int64, error) {
	used, err := b.client.Get(ctx, b.key(clientID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read token usage: %w", err)
	}
	return used, nil
}

func (b *RedisBudget) key(clientID string) string {
	return cache.Key("budget", budgetDay(b.now()), clientID)
}
