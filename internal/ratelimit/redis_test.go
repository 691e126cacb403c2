package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/logging"
	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "redis")
	require.NoError(t, err)

	client, err := ratelimit.NewRedisClient(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	limiter := ratelimit.NewRedisLimiter(client, "test:", 2, time.Minute, logging.Discard())
	assert.Equal(t, 2, limiter.Limit)

	limiter.Counter.Config(limiter.Limit, limiter.Window)
	assertCounts(t, limiter.Counter, limiter.Window)

	keys, err := client.Keys(ctx, "test:*").Result()
	require.NoError(t, err)
	assert.NotEmpty(t, keys, "counts live in redis under the prefix")
}
