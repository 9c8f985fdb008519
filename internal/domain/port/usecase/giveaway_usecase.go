package usecase

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// EntryResult is returned for every successful giveaway action
type EntryResult struct {
	Action  entity.GiveawayAction   `json:"action"`
	Entries entity.EntrySummary     `json:"entries"`
	Balance *entity.BalanceSnapshot `json:"balance,omitempty"`
}

// GiveawayUseCase tracks free, bonus and paid entries
type GiveawayUseCase interface {
	EnterGiveaway(ctx context.Context, userID, giveawayID uint64, action string, engagementType string) (*EntryResult, error)
	ClaimFreeEntry(ctx context.Context, userID, giveawayID uint64) (*EntryResult, error)
	BuyEntry(ctx context.Context, userID, giveawayID uint64) (*EntryResult, error)
	EarnBonusEntry(ctx context.Context, userID, giveawayID uint64, engagementType string) (*EntryResult, error)
	GetEntries(ctx context.Context, userID, giveawayID uint64) (*entity.EntrySummary, error)
}
