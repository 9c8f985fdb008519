package model

import (
	"time"
)

// User represents the database model for users
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	Email     string    `gorm:"type:varchar(255);not null;default:''"`
	Banned    bool      `gorm:"not null;default:false;index"`
	BanReason string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Balance is the per-user credits row. The checks mirror the entity invariant so a
// bad write is refused by the database as well.
type Balance struct {
	UserID         uint64    `gorm:"primaryKey;autoIncrement:false"`
	CurrentBalance int64     `gorm:"not null;default:0;check:chk_balances_non_negative,current_balance >= 0"`
	LifetimeEarned int64     `gorm:"not null;default:0"`
	LifetimeSpent  int64     `gorm:"not null;default:0;check:chk_balances_consistent,current_balance = lifetime_earned - lifetime_spent"`
	UpdatedAt      time.Time `gorm:"not null"`
	User           User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Balance
func (Balance) TableName() string {
	return "balances"
}

// Streak is the per-user check-in streak row
type Streak struct {
	UserID           uint64     `gorm:"primaryKey;autoIncrement:false"`
	CurrentStreak    int        `gorm:"not null;default:0"`
	LongestStreak    int        `gorm:"not null;default:0"`
	LastCheckinDate  *time.Time `gorm:"type:date"`
	StreakSaverCount int        `gorm:"not null;default:0;check:chk_streaks_savers_non_negative,streak_saver_count >= 0"`
	UpdatedAt        time.Time  `gorm:"not null"`
	User             User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Streak
func (Streak) TableName() string {
	return "streaks"
}
