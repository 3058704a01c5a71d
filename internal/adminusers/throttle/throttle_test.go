package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("limits within the window", func(t *testing.T) {
		_, client := newRedis(t)
		l := NewRedisLimiter(client, 2, time.Minute)

		require.NoError(t, l.Allow(ctx, "otp", "code-1"))
		require.NoError(t, l.Allow(ctx, "otp", "code-1"))
		require.ErrorIs(t, l.Allow(ctx, "otp", "code-1"), ErrLimited)

		// Keys and actions are independent.
		require.NoError(t, l.Allow(ctx, "otp", "code-2"))
		require.NoError(t, l.Allow(ctx, "forgotten_password", "code-1"))
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		mr, client := newRedis(t)
		l := NewRedisLimiter(client, 1, time.Minute)

		require.NoError(t, l.Allow(ctx, "otp", "code"))
		require.ErrorIs(t, l.Allow(ctx, "otp", "code"), ErrLimited)

		mr.FastForward(time.Minute + time.Second)
		require.NoError(t, l.Allow(ctx, "otp", "code"))
	})

	t.Run("sets a ttl on the first hit", func(t *testing.T) {
		mr, client := newRedis(t)
		l := NewRedisLimiter(client, 3, 30*time.Second)

		require.NoError(t, l.Allow(ctx, "sms", "alice"))
		require.Equal(t, 30*time.Second, mr.TTL("adminusers:throttle:sms:alice"))
	})

	t.Run("repairs a counter left without a ttl", func(t *testing.T) {
		mr, client := newRedis(t)
		l := NewRedisLimiter(client, 3, time.Minute)

		k := "adminusers:throttle:otp:code"
		require.NoError(t, mr.Set(k, "9"))
		require.Zero(t, mr.TTL(k))

		require.ErrorIs(t, l.Allow(ctx, "otp", "code"), ErrLimited)
		require.Equal(t, time.Minute, mr.TTL(k))

		mr.FastForward(time.Minute + time.Second)
		require.NoError(t, l.Allow(ctx, "otp", "code"))
	})

	t.Run("later hits keep the original window", func(t *testing.T) {
		mr, client := newRedis(t)
		l := NewRedisLimiter(client, 5, time.Minute)

		require.NoError(t, l.Allow(ctx, "otp", "code"))
		mr.FastForward(20 * time.Second)
		require.NoError(t, l.Allow(ctx, "otp", "code"))
		require.Equal(t, 40*time.Second, mr.TTL("adminusers:throttle:otp:code"))
	})

	t.Run("fails open when redis is down", func(t *testing.T) {
		mr, client := newRedis(t)
		l := NewRedisLimiter(client, 1, time.Minute)
		mr.Close()

		require.NoError(t, l.Allow(ctx, "otp", "code"))
		require.NoError(t, l.Allow(ctx, "otp", "code"))
	})
}

func TestNoop(t *testing.T) {
	for range 100 {
		require.NoError(t, Noop{}.Allow(context.Background(), "otp", "code"))
	}
}
