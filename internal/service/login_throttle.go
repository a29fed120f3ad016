package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginThrottle counts failed login attempts per identifier in Redis and
// blocks further attempts once the window limit is hit. Redis being
// unreachable never locks users out: every operation fails open.
type LoginThrottle struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewLoginThrottle builds a throttle. A nil client or non-positive limit
// disables throttling entirely.
func NewLoginThrottle(client *redis.Client, limit, windowSeconds int, logger *zap.Logger) *LoginThrottle {
	if windowSeconds <= 0 {
		windowSeconds = 300
	}
	return &LoginThrottle{
		client: client,
		limit:  limit,
		window: time.Duration(windowSeconds) * time.Second,
		logger: logger,
	}
}

// Blocked reports whether the identifier has exhausted its attempts.
func (t *LoginThrottle) Blocked(ctx context.Context, identifier string) bool {
	if t == nil || t.client == nil || t.limit <= 0 {
		return false
	}
	count, err := t.client.Get(ctx, t.key(identifier)).Int64()
	if err != nil {
		if err != redis.Nil {
			t.logger.Warn("login throttle read failed", zap.Error(err))
		}
		return false
	}
	return count >= int64(t.limit)
}

// RecordFailure bumps the failure counter and refreshes the window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) {
	if t == nil || t.client == nil || t.limit <= 0 {
		return
	}
	key := t.key(identifier)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("login throttle update failed", zap.Error(err))
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) {
	if t == nil || t.client == nil || t.limit <= 0 {
		return
	}
	if err := t.client.Del(ctx, t.key(identifier)).Err(); err != nil {
		t.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}

func (t *LoginThrottle) key(identifier string) string {
	return "auth:login_attempts:" + strings.ToLower(identifier)
}
