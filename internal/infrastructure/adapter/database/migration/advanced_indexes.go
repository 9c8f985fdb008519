package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages the PostgreSQL indexes gorm tags cannot express
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

type indexStatement struct {
	name string
	sql  string
}

// advancedIndexes are partial and BRIN indexes. idx_earn_events_user_lesson is the
// authoritative once-per-module guard for lessons; its name is matched by the repository.
var advancedIndexes = []indexStatement{
	{
		name: "idx_earn_events_user_lesson",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_earn_events_user_lesson
			ON earn_events (user_id, reference_id)
			WHERE type = 'lesson'`,
	},
	{
		name: "idx_earn_events_created_at_brin",
		sql: `CREATE INDEX IF NOT EXISTS idx_earn_events_created_at_brin
			ON earn_events USING BRIN (created_at)
			WITH (pages_per_range = 32)`,
	},
	{
		name: "idx_redemptions_pending",
		sql: `CREATE INDEX IF NOT EXISTS idx_redemptions_pending
			ON redemptions (created_at)
			WHERE status = 'pending_fulfillment'`,
	},
	{
		name: "idx_fraud_flags_unresolved",
		sql: `CREATE INDEX IF NOT EXISTS idx_fraud_flags_unresolved
			ON fraud_flags (user_id, created_at)
			WHERE resolved = false`,
	},
	{
		name: "idx_giveaways_open",
		sql: `CREATE INDEX IF NOT EXISTS idx_giveaways_open
			ON giveaways (starts_at, ends_at)
			WHERE active = true`,
	},
}

// CreateAdvancedIndexes creates the partial and BRIN indexes
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	db := m.db.WithContext(ctx)
	for _, idx := range advancedIndexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", map[string]any{"count": len(advancedIndexes)})
	return nil
}

// CreatePerformanceTweaks applies storage settings; failures are logged and ignored
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	tweaks := []indexStatement{
		// balances and streaks are rewritten on every earn; leave room for HOT updates
		{name: "balances_fillfactor", sql: `ALTER TABLE balances SET (fillfactor = 80)`},
		{name: "streaks_fillfactor", sql: `ALTER TABLE streaks SET (fillfactor = 80)`},
		{name: "earn_events_user_statistics", sql: `ALTER TABLE earn_events ALTER COLUMN user_id SET STATISTICS 1000`},
	}

	db := m.db.WithContext(ctx)
	for _, tweak := range tweaks {
		if err := db.Exec(tweak.sql).Error; err != nil {
			m.logger.Warn("Failed to apply performance tweak", map[string]any{
				"tweak": tweak.name,
				"error": err.Error(),
			})
		}
	}
}
