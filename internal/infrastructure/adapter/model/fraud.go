package model

import (
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	"gorm.io/datatypes"
)

// FraudFlag is an append-only detection record
type FraudFlag struct {
	ID        uint64                                 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64                                 `gorm:"not null;index"`
	DeviceID  string                                 `gorm:"type:varchar(128);not null;default:''"`
	FlagType  string                                 `gorm:"type:varchar(32);not null"`
	Severity  string                                 `gorm:"type:varchar(10);not null"`
	Reason    string                                 `gorm:"type:text;not null;default:''"`
	Details   datatypes.JSONType[entity.FlagDetails] `gorm:"type:jsonb;not null"`
	Resolved  bool                                   `gorm:"not null;default:false"`
	CreatedAt time.Time                              `gorm:"not null"`
}

// TableName specifies the table name for FraudFlag
func (FraudFlag) TableName() string {
	return "fraud_flags"
}

// Device is a fingerprinted client
type Device struct {
	Fingerprint string    `gorm:"primaryKey;type:varchar(128)"`
	UserID      uint64    `gorm:"not null;index"`
	RiskScore   int       `gorm:"not null;default:0"`
	Blocked     bool      `gorm:"not null;default:false"`
	FirstSeenAt time.Time `gorm:"not null"`
	LastSeenAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for Device
func (Device) TableName() string {
	return "devices"
}
