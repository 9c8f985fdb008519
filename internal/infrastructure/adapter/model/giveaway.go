package model

import (
	"time"
)

// Giveaway is a time-boxed raffle
type Giveaway struct {
	ID                    uint64    `gorm:"primaryKey;autoIncrement"`
	Title                 string    `gorm:"type:varchar(255);not null"`
	BonusEntriesAvailable int       `gorm:"not null;default:0"`
	StartsAt              time.Time `gorm:"not null"`
	EndsAt                time.Time `gorm:"not null"`
	Active                bool      `gorm:"not null"`
}

// TableName specifies the table name for Giveaway
func (Giveaway) TableName() string {
	return "giveaways"
}

// GiveawayEntry is one row per user, giveaway and entry type
type GiveawayEntry struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uint64    `gorm:"not null;uniqueIndex:idx_giveaway_entries_unique,priority:1"`
	GiveawayID   uint64    `gorm:"not null;uniqueIndex:idx_giveaway_entries_unique,priority:2"`
	EntryType    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_giveaway_entries_unique,priority:3"`
	EntriesCount int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Giveaway     Giveaway  `gorm:"foreignKey:GiveawayID"`
}

// TableName specifies the table name for GiveawayEntry
func (GiveawayEntry) TableName() string {
	return "giveaway_entries"
}
