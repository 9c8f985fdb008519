package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// EarnEventRepository is the append-only log of accepted earn actions
type EarnEventRepository interface {
	// Create appends an event and assigns its ID
	//
	// Possible errors:
	// - ErrDuplicateSubmission: If the user already has an event with the same idempotency token
	// - ErrAlreadyCompleted: If the user already has a lesson event for the same module
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, event *entity.EarnEvent) error

	// ExistsByToken checks whether an idempotency token was already used by the user
	ExistsByToken(ctx context.Context, userID uint64, token string) (bool, error)

	// ExistsByReference checks whether the user has an event of the given type for a reference id
	ExistsByReference(ctx context.Context, userID uint64, eventType entity.EarnType, referenceID string) (bool, error)

	// SummarizeRange aggregates the user's events with from <= createdAt < to.
	// Runs on every earn attempt and is served by the (user_id, created_at) index.
	SummarizeRange(ctx context.Context, userID uint64, from, to time.Time) (entity.DailyEarnings, error)

	// ListByUser returns the most recent events first
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.EarnEvent, error)
}
