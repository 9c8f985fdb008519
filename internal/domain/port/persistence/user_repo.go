package persistence

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// UserRepository defines essential methods to interact with user data
type UserRepository interface {
	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// Create creates a new user
	//
	// Possible errors:
	// - ErrDuplicateUser: If user with same ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// Update persists the ban state and email of an existing user
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, user *entity.User) error
}

// BalanceRepository stores the one-to-one balance row of each user.
// GetForUpdate is the per-user lock every mutating operation takes first.
type BalanceRepository interface {
	// Create inserts an empty balance
	//
	// Possible errors:
	// - ErrDuplicateUser: If the user already has a balance
	Create(ctx context.Context, balance *entity.Balance) error

	// GetByUserID reads the balance without locking
	//
	// Possible errors:
	// - ErrUserNotFound: If the user has no balance row
	GetByUserID(ctx context.Context, userID uint64) (*entity.Balance, error)

	// GetForUpdate reads the balance and holds a row lock until the surrounding transaction ends.
	// Must be called inside a transaction.
	//
	// Possible errors:
	// - ErrUserNotFound: If the user has no balance row
	// - ErrUserLocked: If the lock could not be taken before the lock timeout
	GetForUpdate(ctx context.Context, userID uint64) (*entity.Balance, error)

	// Save writes back a balance obtained through GetForUpdate
	Save(ctx context.Context, balance *entity.Balance) error
}

// StreakRepository stores the one-to-one streak row of each user
type StreakRepository interface {
	Create(ctx context.Context, streak *entity.Streak) error
	GetByUserID(ctx context.Context, userID uint64) (*entity.Streak, error)
	// GetForUpdate must be called inside a transaction
	GetForUpdate(ctx context.Context, userID uint64) (*entity.Streak, error)
	Save(ctx context.Context, streak *entity.Streak) error
}
