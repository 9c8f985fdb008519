package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const txKey contextKey = "tx"

// txHolder tracks whether the transaction stored in a context is still open
type txHolder struct {
	tx        *gorm.DB
	done      bool
	startedAt time.Time
}

// UnitOfWork implements persistence.UnitOfWork on a gorm connection pool.
// Transactions run at READ COMMITTED: every mutation starts by locking the user's
// balance row, which serializes per-user work without serialization failures.
type UnitOfWork struct {
	db          *gorm.DB
	logger      coreport.Logger
	errorMapper *ErrorMapper
	metrics     *MetricsCollector
	lockTimeout time.Duration
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, metrics *MetricsCollector, lockTimeout time.Duration) *UnitOfWork {
	return &UnitOfWork{
		db:          db,
		logger:      logger,
		errorMapper: NewErrorMapper(),
		metrics:     metrics,
		lockTimeout: lockTimeout,
	}
}

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	tx := u.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, u.errorMapper.MapError(tx.Error, "begin")
	}

	if u.lockTimeout > 0 {
		// SET does not take bind parameters
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			tx.Rollback()
			u.logger.Error("Failed to set lock timeout", map[string]any{"error": err.Error()})
			return ctx, u.errorMapper.MapError(err, "begin")
		}
	}

	return context.WithValue(ctx, txKey, &txHolder{tx: tx, startedAt: u.metrics.startTx()}), nil
}

func activeHolder(ctx context.Context) *txHolder {
	h, ok := ctx.Value(txKey).(*txHolder)
	if !ok || h == nil || h.done {
		return nil
	}
	return h
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	h := activeHolder(ctx)
	if h == nil {
		return errors.New("no transaction found in context")
	}

	h.done = true
	err := h.tx.Commit().Error
	u.metrics.finishTx(h.startedAt, err == nil)
	if err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return u.errorMapper.MapError(err, "commit")
	}
	return nil
}

// Rollback rolls back the current transaction; rolling back a finished transaction is a no-op
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	h, ok := ctx.Value(txKey).(*txHolder)
	if !ok || h == nil {
		return errors.New("no transaction found in context")
	}
	if h.done {
		return nil
	}

	h.done = true
	u.metrics.finishTx(h.startedAt, false)
	if err := h.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.logger.Error("Failed to rollback transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// InTransaction reports whether ctx carries an open transaction
func (u *UnitOfWork) InTransaction(ctx context.Context) bool {
	return activeHolder(ctx) != nil
}

// getDbFromContext returns the open transaction or the pool
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	if h := activeHolder(ctx); h != nil {
		return h.tx
	}
	return u.db.WithContext(ctx)
}

func (u *UnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return repository.NewUserRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetBalanceRepository(ctx context.Context) persistence.BalanceRepository {
	return repository.NewBalanceRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetStreakRepository(ctx context.Context) persistence.StreakRepository {
	return repository.NewStreakRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetEarnEventRepository(ctx context.Context) persistence.EarnEventRepository {
	return repository.NewEarnEventRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetCatalogRepository(ctx context.Context) persistence.CatalogRepository {
	return repository.NewCatalogRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetInventoryRepository(ctx context.Context) persistence.InventoryRepository {
	return repository.NewInventoryRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetRedemptionRepository(ctx context.Context) persistence.RedemptionRepository {
	return repository.NewRedemptionRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetGiveawayRepository(ctx context.Context) persistence.GiveawayRepository {
	return repository.NewGiveawayRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetFraudFlagRepository(ctx context.Context) persistence.FraudFlagRepository {
	return repository.NewFraudFlagRepository(u.getDbFromContext(ctx), u.logger)
}

func (u *UnitOfWork) GetDeviceRepository(ctx context.Context) persistence.DeviceRepository {
	return repository.NewDeviceRepository(u.getDbFromContext(ctx), u.logger)
}
