package model

import (
	"time"
)

// StoreItem is a catalog entry
type StoreItem struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Code         string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Description  string    `gorm:"type:text;not null;default:''"`
	CreditsCost  int64     `gorm:"not null;check:chk_store_items_cost_positive,credits_cost > 0"`
	ItemType     string    `gorm:"type:varchar(20);not null"`
	DurationDays *int      `gorm:"type:integer"`
	MaxPerUser   *int      `gorm:"type:integer"`
	StreakSavers int       `gorm:"not null;default:0"`
	Active       bool      `gorm:"not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for StoreItem
func (StoreItem) TableName() string {
	return "store_items"
}

// InventoryEntry is one row per user and item
type InventoryEntry struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	UserID      uint64     `gorm:"not null;uniqueIndex:idx_inventory_user_item,priority:1"`
	ItemID      uint64     `gorm:"not null;uniqueIndex:idx_inventory_user_item,priority:2"`
	Quantity    int        `gorm:"not null;default:0;check:chk_inventory_quantity_non_negative,quantity >= 0"`
	IsActive    bool       `gorm:"not null;default:false"`
	ActivatedAt *time.Time `gorm:"type:timestamptz"`
	ExpiresAt   *time.Time `gorm:"type:timestamptz;index"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
	Item        StoreItem  `gorm:"foreignKey:ItemID"`
}

// TableName specifies the table name for InventoryEntry
func (InventoryEntry) TableName() string {
	return "user_inventory"
}

// Redemption is the record of a spend
type Redemption struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement"`
	UserID          uint64     `gorm:"not null;index:idx_redemptions_user_item,priority:1"`
	ItemID          uint64     `gorm:"not null;index:idx_redemptions_user_item,priority:2"`
	CreditsSpent    int64      `gorm:"not null"`
	Status          string     `gorm:"type:varchar(32);not null;index"`
	DeliveryEmail   string     `gorm:"type:varchar(255);not null;default:''"`
	FulfillmentCode string     `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt       time.Time  `gorm:"not null;index"`
	FulfilledAt     *time.Time `gorm:"type:timestamptz"`
	Item            StoreItem  `gorm:"foreignKey:ItemID"`
}

// TableName specifies the table name for Redemption
func (Redemption) TableName() string {
	return "redemptions"
}
