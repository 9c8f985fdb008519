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

func TestMetricsCollector_TxStats(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	c := NewMetricsCollector(logger.NewNoopLogger(), clock, 100*time.Millisecond)

	started := c.startTx()
	clock.Advance(20 * time.Millisecond)
	c.finishTx(started, true)

	started = c.startTx()
	clock.Advance(250 * time.Millisecond)
	c.finishTx(started, false)

	stats := c.TxStats()
	assert.Equal(t, uint64(1), stats.Committed)
	assert.Equal(t, uint64(1), stats.RolledBack)
	assert.Equal(t, uint64(1), stats.SlowHolds)
	assert.Equal(t, int64(250), stats.MaxHoldMs)
}

func TestMetricsCollector_Measure(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	c := NewMetricsCollector(logger.NewNoopLogger(), clock, time.Second)

	took, err := c.Measure(context.Background(), "ping", func(context.Context) error {
		clock.Advance(3 * time.Second)
		return errors.New("boom")
	})

	require.EqualError(t, err, "boom")
	assert.Equal(t, 3*time.Second, took)
}
