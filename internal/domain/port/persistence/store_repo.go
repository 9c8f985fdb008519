package persistence

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// CatalogRepository reads the static store catalog
type CatalogRepository interface {
	// GetByID returns an item regardless of its active flag
	//
	// Possible errors:
	// - ErrItemNotFound: If no item has the given ID
	GetByID(ctx context.Context, id uint64) (*entity.StoreItem, error)
	ListActive(ctx context.Context) ([]*entity.StoreItem, error)
	Create(ctx context.Context, item *entity.StoreItem) error
}

// InventoryRepository stores one row per user and item
type InventoryRepository interface {
	// GetForUpdate returns the user's row for an item
	//
	// Possible errors:
	// - ErrNotFound: If the user does not own the item
	GetForUpdate(ctx context.Context, userID, itemID uint64) (*entity.InventoryEntry, error)

	// Save inserts the entry when its ID is zero and updates it otherwise
	Save(ctx context.Context, entry *entity.InventoryEntry) error

	ListByUser(ctx context.Context, userID uint64) ([]*entity.InventoryEntry, error)
}

// RedemptionRepository stores spend records
type RedemptionRepository interface {
	Create(ctx context.Context, redemption *entity.Redemption) error
	CountByUserAndItem(ctx context.Context, userID, itemID uint64) (int64, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Redemption, error)

	// GetForUpdate locks a redemption for a status transition
	//
	// Possible errors:
	// - ErrRedemptionNotFound: If no redemption has the given ID
	GetForUpdate(ctx context.Context, id uint64) (*entity.Redemption, error)

	// Update persists status and fulfillment fields
	Update(ctx context.Context, redemption *entity.Redemption) error
}
