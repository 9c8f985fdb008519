package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
)

func TestMemoryGate(t *testing.T) {
	ctx := context.Background()
	clock := timeprovider.NewManualTimeProvider(time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC))
	gate := NewMemoryGate(clock)

	_, ok, err := gate.DoneUntil(ctx, "checkin:1:2026-03-10")
	require.NoError(t, err)
	assert.False(t, ok)

	until := clock.Now().Add(9 * time.Hour)
	require.NoError(t, gate.MarkDone(ctx, "checkin:1:2026-03-10", until))

	got, ok, err := gate.DoneUntil(ctx, "checkin:1:2026-03-10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, until, got)

	clock.Advance(9 * time.Hour)
	_, ok, err = gate.DoneUntil(ctx, "checkin:1:2026-03-10")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoopGate(t *testing.T) {
	ctx := context.Background()
	var gate NoopGate

	require.NoError(t, gate.MarkDone(ctx, "k", time.Now().Add(time.Hour)))
	_, ok, err := gate.DoneUntil(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
