package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryOnTransientError(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, RetryInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
	clock := timeprovider.NewRealTimeProvider()
	log := logger.NewNoopLogger()

	t.Run("retries connection errors until success", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
			}
			return nil
		}, clock, log)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func(context.Context) error {
			calls++
			return errors.New("connection reset by peer")
		}, clock, log)

		require.Error(t, err)
		assert.Equal(t, cfg.MaxRetries+1, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), cfg, func(context.Context) error {
			calls++
			return errors.New("password authentication failed")
		}, clock, log)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	cfg := RetryConfig{RetryInterval: 100 * time.Millisecond, MaxInterval: time.Second, JitterFactor: 0.2}

	first := calculateBackoffWithJitter(0, cfg)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.LessOrEqual(t, first, 120*time.Millisecond)

	capped := calculateBackoffWithJitter(10, cfg)
	assert.GreaterOrEqual(t, capped, time.Second)
	assert.LessOrEqual(t, capped, 1200*time.Millisecond)
}
