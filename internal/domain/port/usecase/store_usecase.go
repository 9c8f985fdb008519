package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// RedeemRequest asks to spend credits on a catalog item
type RedeemRequest struct {
	ItemID uint64
	Email  string
}

// RedemptionResult is returned for a successful redemption
type RedemptionResult struct {
	Balance    entity.BalanceSnapshot `json:"balance"`
	Redemption *entity.Redemption     `json:"redemption"`
	Inventory  *InventoryItem         `json:"inventory,omitempty"`
}

// InventoryItem is an inventory row with its lazily evaluated active state
type InventoryItem struct {
	ItemID      uint64          `json:"itemId"`
	Code        string          `json:"code,omitempty"`
	ItemType    entity.ItemType `json:"itemType,omitempty"`
	Quantity    int             `json:"quantity"`
	Active      bool            `json:"active"`
	Expired     bool            `json:"expired"`
	ActivatedAt *time.Time      `json:"activatedAt,omitempty"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty"`
}

// StoreUseCase covers catalog reads, redemptions and gift card fulfillment
type StoreUseCase interface {
	ListCatalog(ctx context.Context) ([]*entity.StoreItem, error)
	Redeem(ctx context.Context, userID uint64, req RedeemRequest) (*RedemptionResult, error)
	GetInventory(ctx context.Context, userID uint64) ([]InventoryItem, error)
	ListRedemptions(ctx context.Context, userID uint64, limit int) ([]*entity.Redemption, error)
	FulfillRedemption(ctx context.Context, redemptionID uint64, code string) (*entity.Redemption, error)
}
