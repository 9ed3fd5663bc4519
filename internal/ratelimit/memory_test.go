package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterBurstAndRefill(t *testing.T) {
	limiter, err := NewMemoryLimiter(3, time.Minute)
	if err != nil {
		t.Fatalf("new memory limiter: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "ip") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if limiter.Allow(ctx, "ip") {
		t.Fatalf("fourth request should be blocked")
	}
	if !limiter.Allow(ctx, " ") {
		t.Fatalf("blank key has its own bucket")
	}

	now = now.Add(20 * time.Second)
	if !limiter.Allow(ctx, "ip") {
		t.Fatalf("one token should refill after a third of the window")
	}
	if limiter.Allow(ctx, "ip") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestNewMemoryLimiterRejectsBadQuota(t *testing.T) {
	if _, err := NewMemoryLimiter(0, time.Minute); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := NewMemoryLimiter(1, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
