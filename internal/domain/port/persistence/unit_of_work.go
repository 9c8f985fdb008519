package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency.
// Repositories obtained from a context returned by Begin run inside that transaction;
// repositories obtained from a plain context run on their own.
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// InTransaction reports whether ctx carries an open transaction
	InTransaction(ctx context.Context) bool

	GetUserRepository(ctx context.Context) UserRepository
	GetBalanceRepository(ctx context.Context) BalanceRepository
	GetStreakRepository(ctx context.Context) StreakRepository
	GetEarnEventRepository(ctx context.Context) EarnEventRepository
	GetCatalogRepository(ctx context.Context) CatalogRepository
	GetInventoryRepository(ctx context.Context) InventoryRepository
	GetRedemptionRepository(ctx context.Context) RedemptionRepository
	GetGiveawayRepository(ctx context.Context) GiveawayRepository
	GetFraudFlagRepository(ctx context.Context) FraudFlagRepository
	GetDeviceRepository(ctx context.Context) DeviceRepository
}
