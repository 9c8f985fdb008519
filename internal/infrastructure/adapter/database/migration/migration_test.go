package migration

import (
	"testing"

	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationManager_Pending(t *testing.T) {
	m := NewMigrationManager(nil, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())

	steps := m.steps()
	require.NotEmpty(t, steps)
	assert.Equal(t, CurrentSchemaVersion, steps[len(steps)-1].version)

	t.Run("fresh database runs every step", func(t *testing.T) {
		pending, err := m.pending("")
		require.NoError(t, err)
		assert.Len(t, pending, len(steps))
	})

	t.Run("runs only later steps", func(t *testing.T) {
		pending, err := m.pending("1.0.0")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "1.1.0", pending[0].version)
	})

	t.Run("current version has nothing pending", func(t *testing.T) {
		pending, err := m.pending(CurrentSchemaVersion)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := m.pending("0.9.0")
		assert.ErrorContains(t, err, "unknown schema version")
	})
}

func TestModels(t *testing.T) {
	assert.Len(t, Models(), 11)
}
