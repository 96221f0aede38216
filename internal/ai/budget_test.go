package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestUnlimitedBudget(t *testing.T) {
	var b BudgetChecker = UnlimitedBudget{}
	ctx := context.Background()

	if err := b.Record(ctx, "client", 1_000_000); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	ok, err := b.Check(ctx, "client")
	if err != nil || !ok {
		t.Errorf("Check() = %v, %v; want true, nil", ok, err)
	}
}

func TestInMemoryBudget_NoLimit(t *testing.T) {
	b := NewInMemoryBudget(0)
	ctx := context.Background()

	_ = b.Record(ctx, "client1", 1_000_000)
	ok, err := b.Check(ctx, "client1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() = false, want true (zero limit means unlimited)")
	}
}

func TestInMemoryBudget_WithinAndOver(t *testing.T) {
	tests := []struct {
		name   string
		limit  int64
		record int
		want   bool
	}{
		{"within", 1000, 500, true},
		{"exactly at limit", 100, 100, false},
		{"over", 100, 150, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewInMemoryBudget(tt.limit)
			ctx := context.Background()

			if err := b.Record(ctx, "client1", tt.record); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			ok, err := b.Check(ctx, "client1")
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Check() = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestInMemoryBudget_ClientsAreIsolated(t *testing.T) {
	b := NewInMemoryBudget(100)
	ctx := context.Background()

	_ = b.Record(ctx, "client1", 150)

	ok, _ := b.Check(ctx, "client2")
	if !ok {
		t.Error("client2 should not be affected by client1 usage")
	}
}

func TestInMemoryBudget_SetBudgetOverride(t *testing.T) {
	b := NewInMemoryBudget(100)
	b.SetBudget("staff-room", 10_000)
	ctx := context.Background()

	_ = b.Record(ctx, "staff-room", 500)

	ok, _ := b.Check(ctx, "staff-room")
	if !ok {
		t.Error("override budget should allow 500 tokens")
	}
	used, budget, err := b.Usage(ctx, "staff-room")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 500 || budget != 10_000 {
		t.Errorf("Usage() = %d/%d, want 500/10000", used, budget)
	}
}

func TestInMemoryBudget_ResetsNextDay(t *testing.T) {
	b := NewInMemoryBudget(100)
	day := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return day }
	ctx := context.Background()

	_ = b.Record(ctx, "client1", 200)
	if ok, _ := b.Check(ctx, "client1"); ok {
		t.Fatal("Check() should be false after exceeding the limit")
	}

	day = day.Add(2 * time.Hour)
	if ok, _ := b.Check(ctx, "client1"); !ok {
		t.Error("Check() should be true on a new day")
	}
}

func TestInMemoryBudget_DropsPreviousDays(t *testing.T) {
	b := NewInMemoryBudget(1000)
	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return day }
	ctx := context.Background()

	for d := 0; d < 30; d++ {
		for c := 0; c < 100; c++ {
			if err := b.Record(ctx, fmt.Sprintf("client%d", c), 10); err != nil {
				t.Fatalf("Record() error = %v", err)
			}
		}
		day = day.Add(24 * time.Hour)
	}

	if got := len(b.usage); got != 100 {
		t.Errorf("usage entries = %d, want 100 (only the last day kept)", got)
	}
	if b.day != "20260330" {
		t.Errorf("day = %q, want 20260330", b.day)
	}

	used, _, _ := b.Usage(ctx, "client0")
	if used != 0 {
		t.Errorf("Usage() on a day with no records = %d, want 0", used)
	}
}

func TestInMemoryBudget_NegativeTokens(t *testing.T) {
	b := NewInMemoryBudget(100)
	if err := b.Record(context.Background(), "client1", -5); err == nil {
		t.Error("Record() should reject negative token counts")
	}
}

func TestBudgetDay(t *testing.T) {
	loc := time.FixedZone("MYT", 8*60*60)
	ts := time.Date(2026, 3, 2, 7, 0, 0, 0, loc)
	if got := budgetDay(ts); got != "20260301" {
		t.Errorf("budgetDay() = %q, want 20260301 (UTC day)", got)
	}
}

func TestRedisBudget(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}

	endpoint, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer func() { _ = client.Close() }()

	b := NewRedisBudget(client, 100)

	used, budget, err := b.Usage(ctx, "client1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 0 || budget != 100 {
		t.Errorf("Usage() = %d/%d, want 0/100", used, budget)
	}

	if err := b.Record(ctx, "client1", 60); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if ok, _ := b.Check(ctx, "client1"); !ok {
		t.Error("Check() should be true at 60/100")
	}

	if err := b.Record(ctx, "client1", 60); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if ok, _ := b.Check(ctx, "client1"); ok {
		t.Error("Check() should be false at 120/100")
	}

	ttl, err := client.TTL(ctx, b.key("client1")).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > usageTTL {
		t.Errorf("TTL = %v, want within (0, %v]", ttl, usageTTL)
	}
}
