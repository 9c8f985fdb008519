package migration

import (
	"context"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// CurrentSchemaVersion is the version of the last step in steps()
const CurrentSchemaVersion = "1.1.0"

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	advancedIndexMgr *AdvancedIndexManager
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
}

// Models lists every table the ledger owns, in dependency order
func Models() []any {
	return []any{
		&model.User{},
		&model.Balance{},
		&model.Streak{},
		&model.EarnEvent{},
		&model.StoreItem{},
		&model.InventoryEntry{},
		&model.Redemption{},
		&model.Giveaway{},
		&model.GiveawayEntry{},
		&model.FraudFlag{},
		&model.Device{},
	}
}

// step is one schema version. Steps run in order, each recorded once applied.
type step struct {
	version     string
	description string
	run         func(ctx context.Context) error
}

func (m *MigrationManager) steps() []step {
	return []step{
		{
			version:     "1.0.0",
			description: "Ledger tables, unique keys and check constraints",
			run:         func(context.Context) error { return nil }, // covered by AutoMigrate
		},
		{
			version:     "1.1.0",
			description: "Backfill balances and streaks; partial and BRIN indexes",
			run: func(ctx context.Context) error {
				if err := NewBackfillLedgerRows(m.db, m.logger).Run(ctx); err != nil {
					return err
				}
				return m.advancedIndexMgr.CreateAdvancedIndexes(ctx)
			},
		},
	}
}

// pending returns the steps after currentVersion
func (m *MigrationManager) pending(currentVersion string) ([]step, error) {
	steps := m.steps()
	if currentVersion == "" {
		return steps, nil
	}
	for i, s := range steps {
		if s.version == currentVersion {
			return steps[i+1:], nil
		}
	}
	return nil, fmt.Errorf("unknown schema version %q", currentVersion)
}

// MigrateAll brings the schema from whatever version it is at to CurrentSchemaVersion
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{"error": err.Error()})
		return err
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{"error": err.Error()})
		return err
	}
	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	pending, err := m.pending(currentVersion)
	if err != nil {
		return err
	}

	m.logger.Info("Starting database migrations", map[string]any{
		"from":  currentVersion,
		"to":    CurrentSchemaVersion,
		"steps": len(pending),
	})

	if err := db.AutoMigrate(Models()...); err != nil {
		m.logger.Error("Failed to auto-migrate models", map[string]any{"error": err.Error()})
		return err
	}

	for _, s := range pending {
		if err := s.run(ctx); err != nil {
			m.logger.Error("Migration step failed", map[string]any{
				"error":   err.Error(),
				"version": s.version,
			})
			return fmt.Errorf("migration %s: %w", s.version, err)
		}
		if err := m.setVersion(ctx, s.version, s.description); err != nil {
			return err
		}
		m.logger.Info("Applied migration", map[string]any{"version": s.version, "description": s.description})
	}

	m.advancedIndexMgr.CreatePerformanceTweaks(ctx)
	return nil
}

// GetCurrentVersion gets the current migration version, "" for a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	var version model.MigrationVersion
	err := m.db.WithContext(ctx).Order("applied_at desc, id desc").First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return version.Version, nil
}

func (m *MigrationManager) setVersion(ctx context.Context, version string, details string) error {
	return m.db.WithContext(ctx).Create(&model.MigrationVersion{
		Version:   version,
		AppliedAt: m.timeProvider.Now(),
		Details:   details,
	}).Error
}
