package entity

import (
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
)

// User represents an account holder in the credits economy
type User struct {
	ID        uint64    // Unique identifier issued by the auth layer
	Email     string    // Contact address, optional
	CreatedAt time.Time // Drives the trust tier
	UpdatedAt time.Time // When the user was last updated
	Banned    bool      // Soft delete flag set by admins
	BanReason string
}

// NewUser creates a new active user
func NewUser(id uint64, email string, timeProvider coreport.TimeProvider) (*User, error) {
	if id == 0 {
		return nil, errs.ErrInvalidUserID
	}

	now := timeProvider.Now().UTC()
	return &User{
		ID:        id,
		Email:     strings.TrimSpace(email),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AccountAgeDays returns the number of whole days elapsed since the account was created
func (u *User) AccountAgeDays(now time.Time) int {
	if now.Before(u.CreatedAt) {
		return 0
	}
	return int(now.Sub(u.CreatedAt) / (24 * time.Hour))
}

// EnsureActive fails with an AccountBannedError for banned users
func (u *User) EnsureActive() error {
	if u.Banned {
		return errs.NewAccountBannedError(u.ID, u.BanReason)
	}
	return nil
}

// Ban marks the account as banned
func (u *User) Ban(reason string, timeProvider coreport.TimeProvider) {
	u.Banned = true
	u.BanReason = strings.TrimSpace(reason)
	u.UpdatedAt = timeProvider.Now().UTC()
}

// Unban lifts a previous ban
func (u *User) Unban(timeProvider coreport.TimeProvider) {
	u.Banned = false
	u.BanReason = ""
	u.UpdatedAt = timeProvider.Now().UTC()
}
