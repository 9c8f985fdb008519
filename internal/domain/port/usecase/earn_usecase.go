package usecase

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// EarnRequest is a proposed earn event
type EarnRequest struct {
	Type             string `validate:"required,oneof=checkin ad_view lesson"`
	IdempotencyToken string `validate:"required_if=Type ad_view,max=128"`
	ModuleID         string `validate:"required_if=Type lesson,max=128"`
	QuizScore        int    `validate:"min=0,max=100"`
	DeviceID         string `validate:"max=128"`
	AdUnitID         string `validate:"max=128"`
	AdNetwork        string `validate:"max=64"`
}

// EarnResult is returned for an accepted earn event
type EarnResult struct {
	EventID          uint64                 `json:"eventId"`
	Type             entity.EarnType        `json:"type"`
	Credited         int64                  `json:"credited"`
	Balance          entity.BalanceSnapshot `json:"balance"`
	Streak           *entity.StreakSnapshot `json:"streak,omitempty"`
	SaverConsumed    bool                   `json:"saverConsumed,omitempty"`
	Tier             string                 `json:"tier"`
	DailyCap         int64                  `json:"dailyCap"`
	NonAdEarnedToday int64                  `json:"nonAdEarnedToday"`
	AdsToday         int                    `json:"adsToday"`
	ReviewRequired   bool                   `json:"reviewRequired"`
}

// EarnUseCase decides and records earn events
type EarnUseCase interface {
	SubmitEarnEvent(ctx context.Context, userID uint64, req EarnRequest) (*EarnResult, error)
}

// LedgerReader exposes read-only views of the ledger
type LedgerReader interface {
	GetBalance(ctx context.Context, userID uint64) (*entity.BalanceSnapshot, error)
	ListEarnEvents(ctx context.Context, userID uint64, limit int) ([]*entity.EarnEvent, error)
}
