package security

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisAlerter(t *testing.T) (*AuditAlerter, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	a := NewRedisAuditAlerter(client, "test:alerts")
	fixed := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	return a, server
}

func TestAuditAlerterTriggersOnFailedLogins(t *testing.T) {
	for name, alerter := range map[string]*AuditAlerter{
		"redis":  func() *AuditAlerter { a, _ := newRedisAlerter(t); return a }(),
		"memory": NewMemoryAuditAlerter(),
	} {
		t.Run(name, func(t *testing.T) {
			var last AlertResult
			for i := 0; i < 10; i++ {
				result, err := alerter.Observe(context.Background(), EventAdminLogin, OutcomeFail, "198.51.100.4")
				if err != nil {
					t.Fatalf("observe: %v", err)
				}
				if i < 9 && result.Triggered {
					t.Fatalf("triggered early at attempt %d", i+1)
				}
				last = result
			}
			if !last.Triggered || last.Count != 10 || last.Threshold != 10 {
				t.Fatalf("expected trigger at threshold, got %+v", last)
			}
		})
	}
}

func TestAuditAlerterIgnoresUnknownRule(t *testing.T) {
	alerter, server := newRedisAlerter(t)
	result, err := alerter.Observe(context.Background(), EventAdminLogin, OutcomeSuccess, "198.51.100.4")
	if err != nil || result.Triggered || result.Count != 0 {
		t.Fatalf("unexpected result %+v err=%v", result, err)
	}
	if keys := server.Keys(); len(keys) != 0 {
		t.Fatalf("expected no counters, got %v", keys)
	}
}

func TestAuditAlerterKeysArePerIP(t *testing.T) {
	alerter, server := newRedisAlerter(t)
	ctx := context.Background()
	_, _ = alerter.Observe(ctx, EventAdminLogin, OutcomeRateLimited, "198.51.100.4")
	_, _ = alerter.Observe(ctx, EventAdminLogin, OutcomeRateLimited, "")
	if keys := server.Keys(); len(keys) != 2 {
		t.Fatalf("expected one counter per ip, got %v", keys)
	}
}

func TestNilAlerterIsNoop(t *testing.T) {
	var a *AuditAlerter
	if _, err := a.Observe(context.Background(), EventAdminLogin, OutcomeFail, "x"); err != nil {
		t.Fatalf("nil alerter: %v", err)
	}
	if NewRedisAuditAlerter(nil, "") != nil {
		t.Fatalf("expected nil alerter for nil client")
	}
}
