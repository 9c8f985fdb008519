package entity

import (
	"fmt"
	"math"
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
)

// Balance holds a user's spendable credits and lifetime totals.
// Fields are private so the only way to move credits is Credit or Debit,
// which keep current == lifetimeEarned - lifetimeSpent and current >= 0.
type Balance struct {
	UserID         uint64
	current        int64
	lifetimeEarned int64
	lifetimeSpent  int64
	UpdatedAt      time.Time
}

// NewBalance creates an empty balance for a user
func NewBalance(userID uint64, timeProvider coreport.TimeProvider) *Balance {
	return &Balance{
		UserID:    userID,
		UpdatedAt: timeProvider.Now().UTC(),
	}
}

// RestoreBalance rebuilds a balance from persisted values, rejecting rows that break the invariant
func RestoreBalance(userID uint64, current, lifetimeEarned, lifetimeSpent int64, updatedAt time.Time) (*Balance, error) {
	if current < 0 || lifetimeEarned < 0 || lifetimeSpent < 0 || current != lifetimeEarned-lifetimeSpent {
		return nil, fmt.Errorf("%w: corrupt balance for user %d (current=%d earned=%d spent=%d)",
			errs.ErrConstraintViolation, userID, current, lifetimeEarned, lifetimeSpent)
	}
	return &Balance{
		UserID:         userID,
		current:        current,
		lifetimeEarned: lifetimeEarned,
		lifetimeSpent:  lifetimeSpent,
		UpdatedAt:      updatedAt,
	}, nil
}

// Current returns the spendable credits
func (b *Balance) Current() int64 {
	return b.current
}

// LifetimeEarned returns the total credits ever earned
func (b *Balance) LifetimeEarned() int64 {
	return b.lifetimeEarned
}

// LifetimeSpent returns the total credits ever spent
func (b *Balance) LifetimeSpent() int64 {
	return b.lifetimeSpent
}

// CanAfford reports whether the balance covers the given cost
func (b *Balance) CanAfford(amount int64) bool {
	return b.current >= amount
}

// Credit adds credits to the balance
func (b *Balance) Credit(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if b.lifetimeEarned > math.MaxInt64-amount {
		return errs.ErrAmountOverflow
	}

	b.current += amount
	b.lifetimeEarned += amount
	b.UpdatedAt = timeProvider.Now().UTC()
	return nil
}

// Debit removes credits from the balance, leaving it untouched when funds are insufficient
func (b *Balance) Debit(amount int64, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}
	if b.current < amount {
		return errs.NewInsufficientBalanceError(b.UserID, amount, b.current)
	}

	b.current -= amount
	b.lifetimeSpent += amount
	b.UpdatedAt = timeProvider.Now().UTC()
	return nil
}

// Snapshot returns an immutable copy suitable for responses
func (b *Balance) Snapshot() BalanceSnapshot {
	return BalanceSnapshot{
		UserID:         b.UserID,
		Current:        b.current,
		LifetimeEarned: b.lifetimeEarned,
		LifetimeSpent:  b.lifetimeSpent,
		UpdatedAt:      b.UpdatedAt,
	}
}

// BalanceSnapshot is a read-only view of a balance
type BalanceSnapshot struct {
	UserID         uint64    `json:"userId"`
	Current        int64     `json:"current"`
	LifetimeEarned int64     `json:"lifetimeEarned"`
	LifetimeSpent  int64     `json:"lifetimeSpent"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
