package throttle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedisLimiterAgainstRedis runs the limiter against a real Redis server.
// It needs Docker and is skipped with -short.
func TestRedisLimiterAgainstRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, 3, time.Minute)
	require.NoError(t, l.Ping(ctx))

	for range 3 {
		require.NoError(t, l.Allow(ctx, "otp", "integration"))
	}
	require.ErrorIs(t, l.Allow(ctx, "otp", "integration"), ErrLimited)

	ttl, err := client.TTL(ctx, "adminusers:throttle:otp:integration").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}
