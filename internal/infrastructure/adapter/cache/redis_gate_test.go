package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
)

// Runs against a live redis when CL_TEST_REDIS_ADDR is set, e.g. localhost:6379
func TestRedisGate(t *testing.T) {
	addr := os.Getenv("CL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CL_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, Options{Addr: addr, DialTimeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "cl-test:" + t.Name() + ":"
	gate := NewRedisGate(client, prefix, timeprovider.NewRealTimeProvider())
	t.Cleanup(func() { client.Del(context.Background(), prefix+"bonus:1:1") })

	_, ok, err := gate.DoneUntil(ctx, "bonus:1:1")
	require.NoError(t, err)
	assert.False(t, ok)

	until := time.Now().Add(time.Minute).Truncate(time.Millisecond).UTC()
	require.NoError(t, gate.MarkDone(ctx, "bonus:1:1", until))

	got, ok, err := gate.DoneUntil(ctx, "bonus:1:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, until.Equal(got))

	ttl, err := client.TTL(ctx, prefix+"bonus:1:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
