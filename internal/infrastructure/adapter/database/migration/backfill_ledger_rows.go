package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// BackfillLedgerRows gives every user a balance and a streak row. Schema 1.0.0 created
// them lazily, so accounts that never earned have neither.
type BackfillLedgerRows struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewBackfillLedgerRows creates a new migration instance
func NewBackfillLedgerRows(db *gorm.DB, logger coreport.Logger) *BackfillLedgerRows {
	return &BackfillLedgerRows{
		db:     db,
		logger: logger,
	}
}

// Run executes the migration
func (m *BackfillLedgerRows) Run(ctx context.Context) error {
	m.logger.Info("Backfilling balance and streak rows", nil)

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balances := tx.Exec(`
			INSERT INTO balances (user_id, current_balance, lifetime_earned, lifetime_spent, updated_at)
			SELECT id, 0, 0, 0, created_at FROM users
			ON CONFLICT (user_id) DO NOTHING`)
		if balances.Error != nil {
			m.logger.Error("Failed to backfill balances", map[string]any{"error": balances.Error.Error()})
			return balances.Error
		}

		streaks := tx.Exec(`
			INSERT INTO streaks (user_id, current_streak, longest_streak, streak_saver_count, updated_at)
			SELECT id, 0, 0, 0, created_at FROM users
			ON CONFLICT (user_id) DO NOTHING`)
		if streaks.Error != nil {
			m.logger.Error("Failed to backfill streaks", map[string]any{"error": streaks.Error.Error()})
			return streaks.Error
		}

		m.logger.Info("Backfill completed", map[string]any{
			"balances_created": balances.RowsAffected,
			"streaks_created":  streaks.RowsAffected,
		})
		return nil
	})
}
