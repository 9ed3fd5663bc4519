// Package ratelimit throttles callers by key, usually client IP.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Limiter reports whether one more request for key fits in the quota.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

var errInvalidQuota = errors.New("rate limiter requires positive limit and window")

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "unknown"
	}
	return key
}

func validQuota(limit int, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return errInvalidQuota
	}
	return nil
}
