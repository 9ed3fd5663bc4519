// Package security raises alerts when failed admin activity from one address
// crosses a threshold.
package security

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Audit event names and outcomes shared with the HTTP layer.
const (
	EventAdminLogin  = "admin.login"
	EventAdminVerify = "admin.verify"
	EventAdminGuard  = "admin.guard"

	OutcomeSuccess     = "success"
	OutcomeFail        = "fail"
	OutcomeRateLimited = "rate_limited"
)

type rule struct {
	threshold int64
	window    time.Duration
}

var failRules = map[string]rule{
	EventAdminLogin:  {threshold: 10, window: 5 * time.Minute},
	EventAdminVerify: {threshold: 25, window: 5 * time.Minute},
	EventAdminGuard:  {threshold: 25, window: 5 * time.Minute},
}

var rateLimitedRule = rule{threshold: 20, window: time.Minute}

func lookupRule(event, outcome string) (rule, bool) {
	switch strings.TrimSpace(outcome) {
	case OutcomeRateLimited:
		return rateLimitedRule, true
	case OutcomeFail:
		r, ok := failRules[strings.TrimSpace(event)]
		return r, ok
	default:
		return rule{}, false
	}
}

// AlertResult is the outcome of one Observe call.
type AlertResult struct {
	Triggered bool
	Count     int64
	Threshold int64
	Window    time.Duration
}

// counter increments key and arms its expiry on first use.
type counter interface {
	incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// AuditAlerter counts audit events per (event, outcome, ip, window slot).
type AuditAlerter struct {
	counter counter
	prefix  string
	now     func() time.Time
}

// NewRedisAuditAlerter shares counters across replicas through Redis.
func NewRedisAuditAlerter(client redis.UniversalClient, prefix string) *AuditAlerter {
	if client == nil {
		return nil
	}
	return newAuditAlerter(&redisCounter{client: client}, prefix)
}

// NewMemoryAuditAlerter keeps counters in process memory.
func NewMemoryAuditAlerter() *AuditAlerter {
	return newAuditAlerter(&memoryCounter{entries: make(map[string]memoryCount)}, "")
}

func newAuditAlerter(c counter, prefix string) *AuditAlerter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "littleforest:admin:alerts"
	}
	return &AuditAlerter{counter: c, prefix: prefix, now: time.Now}
}

// Observe records one event. Events without a rule are ignored.
func (a *AuditAlerter) Observe(ctx context.Context, event, outcome, ip string) (AlertResult, error) {
	var result AlertResult
	if a == nil || a.counter == nil {
		return result, nil
	}
	r, ok := lookupRule(event, outcome)
	if !ok {
		return result, nil
	}
	slot := a.now().UTC().UnixMilli() / r.window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%s:%s:%d", a.prefix, segment(event), segment(outcome), segment(ip), slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := a.counter.incr(ctx, key, r.window)
	if err != nil {
		return result, err
	}
	result.Count = count
	result.Threshold = r.threshold
	result.Window = r.window
	result.Triggered = count >= r.threshold
	return result, nil
}

var segmentReplacer = strings.NewReplacer(":", "_", "|", "_", " ", "_")

func segment(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return "unknown"
	}
	return segmentReplacer.Replace(in)
}

var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

type redisCounter struct {
	client redis.UniversalClient
}

func (c *redisCounter) incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64()
}

type memoryCount struct {
	n       int64
	expires time.Time
}

type memoryCounter struct {
	mu      sync.Mutex
	entries map[string]memoryCount
}

func (c *memoryCounter) incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	e, ok := c.entries[key]
	if !ok {
		e.expires = now.Add(window)
	}
	e.n++
	c.entries[key] = e
	return e.n, nil
}
