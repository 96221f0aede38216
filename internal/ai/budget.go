package ai

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BudgetChecker checks and records token usage against a per-client daily budget.
type BudgetChecker interface {
	// Check returns true if the client has budget remaining today.
	Check(ctx context.Context, clientID string) (bool, error)
	// Record records token usage for a client.
	Record(ctx context.Context, clientID string, tokens int) error
	// Usage returns today's usage and the applicable budget (0 = unlimited).
	Usage(ctx context.Context, clientID string) (used int64, budget int64, err error)
}

// UnlimitedBudget never refuses a request and records nothing.
type UnlimitedBudget struct{}

func (UnlimitedBudget) Check(context.Context, string) (bool, error)         { return true, nil }
func (UnlimitedBudget) Record(context.Context, string, int) error           { return nil }
func (UnlimitedBudget) Usage(context.Context, string) (int64, int64, error) { return 0, 0, nil }

// InMemoryBudget is a single-process budget tracker for development and tests.
type InMemoryBudget struct {
	mu        sync.RWMutex
	limit     int64            // default limit; 0 means unlimited
	overrides map[string]int64 // clientID -> limit
	day       string           // UTC day usage is counted for
	usage     map[string]int64 // clientID -> tokens used on day
	now       func() time.Time
}

// NewInMemoryBudget creates a tracker where every client gets limit tokens per day.
func NewInMemoryBudget(limit int64) *InMemoryBudget {
	return &InMemoryBudget{
		limit:     limit,
		overrides: make(map[string]int64),
		usage:     make(map[string]int64),
		now:       time.Now,
	}
}

// SetBudget overrides the daily token budget for one client.
func (b *InMemoryBudget) SetBudget(clientID string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[clientID] = tokens
}

func (b *InMemoryBudget) Check(_ context.Context, clientID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget := b.budgetFor(clientID)
	if budget == 0 {
		return true, nil
	}
	return b.usedToday(clientID) < budget, nil
}

func (b *InMemoryBudget) Record(_ context.Context, clientID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Earlier days are dropped on rollover.
	if today := budgetDay(b.now()); today != b.day {
		b.day = today
		b.usage = make(map[string]int64)
	}
	b.usage[clientID] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(_ context.Context, clientID string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usedToday(clientID), b.budgetFor(clientID), nil
}

func (b *InMemoryBudget) budgetFor(clientID string) int64 {
	if v, ok := b.overrides[clientID]; ok {
		return v
	}
	return b.limit
}

// usedToday must be called with b.mu held.
func (b *InMemoryBudget) usedToday(clientID string) int64 {
	if b.day != budgetDay(b.now()) {
		return 0
	}
	return b.usage[clientID]
}

// budgetDay is the UTC day bucket usage is counted in.
func budgetDay(t time.Time) string {
	return t.UTC().Format("20060102")
}
