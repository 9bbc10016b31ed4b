package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(nil, 0, 0)
	assert.Equal(t, int64(defaultMaxAttempts), th.maxAttempts)
	assert.Equal(t, defaultWindow, th.window)
	assert.Equal(t, "login_failures:alice", th.key("alice"))
}

func TestLoginThrottle_Integration(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	th := NewLoginThrottle(client, 3, time.Minute)
	username := fmt.Sprintf("alice-%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = th.Reset(ctx, username) })

	for i := 0; i < 3; i++ {
		ok, err := th.Allow(ctx, username)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
		require.NoError(t, th.RecordFailure(ctx, username))
	}

	ok, err := th.Allow(ctx, username)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, th.key(username)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, th.Reset(ctx, username))
	ok, err = th.Allow(ctx, username)
	require.NoError(t, err)
	assert.True(t, ok)
}
