// Package throttle limits how often an action may be repeated for one key
// (an invite code, a username) using a fixed window counter in Redis.
package throttle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/adminusers/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

var ErrLimited = errors.New("throttle: limit exceeded")

// Limiter reports ErrLimited once key has been used more than the configured
// number of times within the window.
type Limiter interface {
	Allow(ctx context.Context, action, key string) error
}

// Noop never limits.
type Noop struct{}

func (Noop) Allow(context.Context, string, string) error { return nil }

type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: "adminusers:throttle:"}
}

// Allow increments the counter for action/key. Redis failures are logged and
// the request is let through.
func (l *RedisLimiter) Allow(ctx context.Context, action, key string) error {
	k := l.prefix + action + ":" + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("throttle unavailable, allowing request",
			slog.String("action", action),
			slog.Any("error", err),
		)
		return nil
	}

	// A counter without a TTL would never reset, so the window is set
	// whenever it is missing rather than only on the first hit.
	if ttl.Val() < 0 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			slogx.FromContext(ctx).Warn("failed to set throttle window",
				slog.String("action", action),
				slog.Any("error", err),
			)
		}
	}

	if incr.Val() > int64(l.limit) {
		return ErrLimited
	}
	return nil
}

// Ping checks the Redis connection.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
