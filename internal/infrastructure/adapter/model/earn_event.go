package model

import (
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	"gorm.io/datatypes"
)

// EarnEvent is an append-only credit record. Ad tokens are unique per user;
// lesson modules are unique per user through a partial index created by the migration.
type EarnEvent struct {
	ID               uint64                                  `gorm:"primaryKey;autoIncrement"`
	UserID           uint64                                  `gorm:"not null;index:idx_earn_events_user_created,priority:1;uniqueIndex:idx_earn_events_user_token,priority:1"`
	Type             string                                  `gorm:"type:varchar(20);not null"`
	Amount           int64                                   `gorm:"not null;check:chk_earn_events_amount_positive,amount > 0"`
	IdempotencyToken *string                                 `gorm:"type:varchar(128);uniqueIndex:idx_earn_events_user_token,priority:2"`
	ReferenceID      *string                                 `gorm:"type:varchar(128)"`
	DeviceID         string                                  `gorm:"type:varchar(128);not null;default:''"`
	Metadata         datatypes.JSONType[entity.EarnMetadata] `gorm:"type:jsonb;not null"`
	CreatedAt        time.Time                               `gorm:"not null;index:idx_earn_events_user_created,priority:2"`
}

// TableName specifies the table name for EarnEvent
func (EarnEvent) TableName() string {
	return "earn_events"
}

// EarnTypeSum is one row of the per-type aggregate used by the daily summary
type EarnTypeSum struct {
	Type  string
	Total int64
	Count int
}
