package persistence

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// GiveawayRepository stores giveaways and the per-user entry rows
type GiveawayRepository interface {
	// GetByID returns a giveaway
	//
	// Possible errors:
	// - ErrGiveawayNotFound: If no giveaway has the given ID
	GetByID(ctx context.Context, id uint64) (*entity.Giveaway, error)
	Create(ctx context.Context, giveaway *entity.Giveaway) error

	// GetEntryForUpdate returns the user's row of one entry type
	//
	// Possible errors:
	// - ErrNotFound: If the user has no entries of that type yet
	GetEntryForUpdate(ctx context.Context, userID, giveawayID uint64, entryType entity.EntryType) (*entity.GiveawayEntry, error)

	// SaveEntry inserts the entry when its ID is zero and updates it otherwise
	//
	// Possible errors:
	// - ErrAlreadyClaimed: If an insert collides with an existing row of the same type
	SaveEntry(ctx context.Context, entry *entity.GiveawayEntry) error

	ListEntries(ctx context.Context, userID, giveawayID uint64) ([]*entity.GiveawayEntry, error)
}
