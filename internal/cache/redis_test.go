package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты Redis-реализации; запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/cache -v -count=1

func startRedis(t *testing.T) Blocklist {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "docker.io/redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	bl, err := NewRedisBlocklist(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bl.Close() })

	return bl
}

func TestIntegration_RedisBlocklist_RevokeAndExpire(t *testing.T) {
	bl := startRedis(t)
	ctx := context.Background()

	ok, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Second))

	ok, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		ok, err := bl.IsRevoked(ctx, "jti-1")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestIntegration_RedisBlocklist_RevokeStoresPlainKeyWithTTL(t *testing.T) {
	bl := startRedis(t)
	ctx := context.Background()

	rb, ok := bl.(*redisBlocklist)
	require.True(t, ok)

	require.NoError(t, bl.Revoke(ctx, "jti-2", time.Minute))

	typ, err := rb.rdb.Type(ctx, rb.key("jti-2")).Result()
	require.NoError(t, err)
	require.Equal(t, "string", typ)

	val, err := rb.rdb.Get(ctx, rb.key("jti-2")).Result()
	require.NoError(t, err)
	require.Equal(t, "1", val)

	ttl, err := rb.rdb.TTL(ctx, rb.key("jti-2")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)
}

func TestIntegration_RedisBlocklist_NonPositiveTTL_NoOp(t *testing.T) {
	bl := startRedis(t)
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-0", 0))

	ok, err := bl.IsRevoked(ctx, "jti-0")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRedisBlocklist_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedisBlocklist(context.Background(), "://bad", "")
	require.Error(t, err)
}
