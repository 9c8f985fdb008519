package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// ItemType classifies catalog items by how they are owned
type ItemType string

const (
	ItemTypeConsumable   ItemType = "consumable"
	ItemTypeBoost        ItemType = "boost"
	ItemTypeCosmetic     ItemType = "cosmetic"
	ItemTypeGiftCard     ItemType = "giftcard"
	ItemTypeSubscription ItemType = "subscription"
	ItemTypeBadge        ItemType = "badge"
)

// StoreItem is a catalog entry; reference data not touched by normal traffic
type StoreItem struct {
	ID           uint64
	Code         string
	Name         string
	Description  string
	CreditsCost  int64
	ItemType     ItemType
	DurationDays *int // nil means permanent
	MaxPerUser   *int // nil means unlimited
	StreakSavers int  // savers granted per redemption, consumables only
	Active       bool
	CreatedAt    time.Time
}

// IsConsumable reports whether redemptions accumulate quantity instead of ownership
func (i *StoreItem) IsConsumable() bool {
	return i.ItemType == ItemTypeConsumable
}

// RequiresEmail reports whether fulfillment needs a delivery address
func (i *StoreItem) RequiresEmail() bool {
	return i.ItemType == ItemTypeGiftCard
}

// ExpiresAt returns the expiry of a grant activated at the given moment, nil when permanent
func (i *StoreItem) ExpiresAt(activatedAt time.Time) *time.Time {
	if i.DurationDays == nil {
		return nil
	}
	exp := activatedAt.Add(time.Duration(*i.DurationDays) * 24 * time.Hour)
	return &exp
}

// InventoryEntry is one row per user and item
type InventoryEntry struct {
	ID          uint64
	UserID      uint64
	ItemID      uint64
	Quantity    int
	IsActive    bool
	ActivatedAt *time.Time
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsExpired reports whether a timed grant has passed its expiry
func (e *InventoryEntry) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// ActiveAt evaluates the active flag lazily against the clock
func (e *InventoryEntry) ActiveAt(now time.Time) bool {
	return e.IsActive && !e.IsExpired(now)
}

// Activate starts a boost window at now
func (e *InventoryEntry) Activate(item *StoreItem, now time.Time) {
	activated := now.UTC()
	e.IsActive = true
	e.ActivatedAt = &activated
	e.ExpiresAt = item.ExpiresAt(activated)
	e.UpdatedAt = activated
}

// RedemptionStatus is the lifecycle state of a redemption
type RedemptionStatus string

const (
	RedemptionCompleted          RedemptionStatus = "completed"
	RedemptionPendingFulfillment RedemptionStatus = "pending_fulfillment"
	RedemptionFulfilled          RedemptionStatus = "fulfilled"
)

// Redemption is the record of a completed spend
type Redemption struct {
	ID              uint64
	UserID          uint64
	ItemID          uint64
	CreditsSpent    int64
	Status          RedemptionStatus
	DeliveryEmail   string
	FulfillmentCode string
	CreatedAt       time.Time
	FulfilledAt     *time.Time
}

// NewRedemption creates the record for a spend on item, picking the initial status by item type
func NewRedemption(userID uint64, item *StoreItem, email string, now time.Time) *Redemption {
	status := RedemptionCompleted
	if item.RequiresEmail() {
		status = RedemptionPendingFulfillment
	}
	return &Redemption{
		UserID:        userID,
		ItemID:        item.ID,
		CreditsSpent:  item.CreditsCost,
		Status:        status,
		DeliveryEmail: email,
		CreatedAt:     now.UTC(),
	}
}

// Fulfill moves a pending gift card redemption to fulfilled
func (r *Redemption) Fulfill(code string, now time.Time) error {
	if r.Status != RedemptionPendingFulfillment {
		return errs.ErrInvalidStatusTransition
	}
	fulfilledAt := now.UTC()
	r.Status = RedemptionFulfilled
	r.FulfillmentCode = code
	r.FulfilledAt = &fulfilledAt
	return nil
}
