package giveaway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

// Service is the giveaway entry ledger. Free entries are claimed once, bonus
// entries are earned by engagement under a cooldown, paid entries are bought
// with credits and are unbounded.
type Service struct {
	runner       *txn.Runner
	ledger       *ledger.Ledger
	gate         coreport.CompletionGate
	policy       entity.EconomyPolicy
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new giveaway service
func NewService(
	runner *txn.Runner,
	ldg *ledger.Ledger,
	gate coreport.CompletionGate,
	policy entity.EconomyPolicy,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		runner:       runner,
		ledger:       ldg,
		gate:         gate,
		policy:       policy,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// EnterGiveaway dispatches one of claim_free, buy or bonus
func (s *Service) EnterGiveaway(ctx context.Context, userID, giveawayID uint64, action string, engagementType string) (*usecase.EntryResult, error) {
	if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	parsed, err := entity.ParseGiveawayAction(action)
	if err != nil {
		return nil, err
	}

	switch parsed {
	case entity.ActionClaimFree:
		return s.ClaimFreeEntry(ctx, userID, giveawayID)
	case entity.ActionBuy:
		return s.BuyEntry(ctx, userID, giveawayID)
	default:
		return s.EarnBonusEntry(ctx, userID, giveawayID, engagementType)
	}
}

// ClaimFreeEntry grants the single free entry of a giveaway
func (s *Service) ClaimFreeEntry(ctx context.Context, userID, giveawayID uint64) (*usecase.EntryResult, error) {
	if err := s.precheck(ctx, userID, giveawayID); err != nil {
		return nil, err
	}

	var summary entity.EntrySummary
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		repo := s.runner.UnitOfWork().GetGiveawayRepository(ctx)
		now := s.timeProvider.Now()

		if _, err := s.ledger.Lock(ctx, userID); err != nil {
			return err
		}
		free, err := findEntry(ctx, repo, userID, giveawayID, entity.EntryTypeFree)
		if err != nil {
			return err
		}
		if free != nil && free.EntriesCount > 0 {
			return errs.ErrAlreadyClaimed
		}

		if free == nil {
			free = newEntry(userID, giveawayID, entity.EntryTypeFree, now)
		}
		free.EntriesCount = 1
		free.UpdatedAt = now
		if err := repo.SaveEntry(ctx, free); err != nil {
			return err
		}

		summary, err = s.summarize(ctx, repo, userID, giveawayID, now)
		return err
	})
	if err != nil {
		return nil, s.reject(userID, giveawayID, entity.ActionClaimFree, err)
	}

	s.logger.Info("Free giveaway entry claimed", map[string]any{"user_id": userID, "giveaway_id": giveawayID})
	return &usecase.EntryResult{Action: entity.ActionClaimFree, Entries: summary}, nil
}

// BuyEntry debits the entry cost and adds one paid entry
func (s *Service) BuyEntry(ctx context.Context, userID, giveawayID uint64) (*usecase.EntryResult, error) {
	if err := s.precheck(ctx, userID, giveawayID); err != nil {
		return nil, err
	}

	var (
		summary entity.EntrySummary
		balance entity.BalanceSnapshot
	)
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		repo := s.runner.UnitOfWork().GetGiveawayRepository(ctx)
		now := s.timeProvider.Now()

		if _, err := s.ledger.Lock(ctx, userID); err != nil {
			return err
		}
		if err := requireFreeEntry(ctx, repo, userID, giveawayID); err != nil {
			return err
		}

		var err error
		balance, err = s.ledger.Debit(ctx, userID, s.policy.GiveawayEntryCost)
		if err != nil {
			return err
		}

		paid, err := findEntry(ctx, repo, userID, giveawayID, entity.EntryTypePaid)
		if err != nil {
			return err
		}
		if paid == nil {
			paid = newEntry(userID, giveawayID, entity.EntryTypePaid, now)
		}
		paid.EntriesCount++
		paid.UpdatedAt = now
		if err := repo.SaveEntry(ctx, paid); err != nil {
			return err
		}

		summary, err = s.summarize(ctx, repo, userID, giveawayID, now)
		return err
	})
	if err != nil {
		return nil, s.reject(userID, giveawayID, entity.ActionBuy, err)
	}

	s.logger.Info("Paid giveaway entry bought", map[string]any{
		"user_id":     userID,
		"giveaway_id": giveawayID,
		"cost":        s.policy.GiveawayEntryCost,
		"paid":        summary.Paid,
		"balance":     balance.Current,
	})
	return &usecase.EntryResult{Action: entity.ActionBuy, Entries: summary, Balance: &balance}, nil
}

// EarnBonusEntry adds one engagement-earned entry, limited by the giveaway's
// bonus allowance and by a cooldown since the previous bonus
func (s *Service) EarnBonusEntry(ctx context.Context, userID, giveawayID uint64, engagementType string) (*usecase.EntryResult, error) {
	engagementType = strings.TrimSpace(engagementType)
	if engagementType == "" {
		if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
			return nil, err
		}
		return nil, errs.ErrInvalidEngagementType
	}
	if err := s.precheck(ctx, userID, giveawayID); err != nil {
		return nil, err
	}

	if until, ok := s.cooldownGateHit(ctx, userID, giveawayID); ok {
		return nil, s.reject(userID, giveawayID, entity.ActionBonus, errs.NewCooldownError(userID, string(entity.ActionBonus), until))
	}

	var (
		summary  entity.EntrySummary
		giveaway *entity.Giveaway
	)
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		repo := s.runner.UnitOfWork().GetGiveawayRepository(ctx)
		now := s.timeProvider.Now()

		if _, err := s.ledger.Lock(ctx, userID); err != nil {
			return err
		}
		var err error
		giveaway, err = repo.GetByID(ctx, giveawayID)
		if err != nil {
			return err
		}
		if err := requireFreeEntry(ctx, repo, userID, giveawayID); err != nil {
			return err
		}

		bonus, err := findEntry(ctx, repo, userID, giveawayID, entity.EntryTypeBonus)
		if err != nil {
			return err
		}
		earned := 0
		if bonus != nil {
			earned = bonus.EntriesCount
		}
		if earned >= giveaway.BonusEntriesAvailable {
			return errs.ErrBonusLimitReached
		}
		if earned > 0 {
			availableAt := bonus.UpdatedAt.Add(s.policy.BonusCooldown)
			if now.Before(availableAt) {
				return errs.NewCooldownError(userID, string(entity.ActionBonus), availableAt)
			}
		}

		if bonus == nil {
			bonus = newEntry(userID, giveawayID, entity.EntryTypeBonus, now)
		}
		bonus.EntriesCount++
		bonus.UpdatedAt = now
		if err := repo.SaveEntry(ctx, bonus); err != nil {
			return err
		}

		summary, err = s.summarize(ctx, repo, userID, giveawayID, now)
		return err
	})
	if err != nil {
		return nil, s.reject(userID, giveawayID, entity.ActionBonus, err)
	}

	if summary.NextBonusAt != nil && summary.Bonus < giveaway.BonusEntriesAvailable {
		s.markCooldown(ctx, userID, giveawayID, *summary.NextBonusAt)
	}

	s.logger.Info("Bonus giveaway entry earned", map[string]any{
		"user_id":     userID,
		"giveaway_id": giveawayID,
		"engagement":  engagementType,
		"bonus":       summary.Bonus,
	})
	return &usecase.EntryResult{Action: entity.ActionBonus, Entries: summary}, nil
}

// GetEntries returns the user's entry counts for a giveaway
func (s *Service) GetEntries(ctx context.Context, userID, giveawayID uint64) (*entity.EntrySummary, error) {
	if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	repo := s.runner.UnitOfWork().GetGiveawayRepository(ctx)
	if _, err := repo.GetByID(ctx, giveawayID); err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, repo, userID, giveawayID, s.timeProvider.Now())
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// precheck runs the checks that need no lock: account state, then the giveaway window
func (s *Service) precheck(ctx context.Context, userID, giveawayID uint64) error {
	if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
		return err
	}
	if giveawayID == 0 {
		return errs.ErrInvalidRequest
	}
	giveaway, err := s.runner.UnitOfWork().GetGiveawayRepository(ctx).GetByID(ctx, giveawayID)
	if err != nil {
		return err
	}
	if !giveaway.OpenAt(s.timeProvider.Now()) {
		return errs.ErrGiveawayClosed
	}
	return nil
}

func (s *Service) summarize(ctx context.Context, repo persistence.GiveawayRepository, userID, giveawayID uint64, now time.Time) (entity.EntrySummary, error) {
	entries, err := repo.ListEntries(ctx, userID, giveawayID)
	if err != nil {
		return entity.EntrySummary{}, err
	}
	return entity.SummarizeEntries(giveawayID, entries, s.policy.BonusCooldown, now), nil
}

func (s *Service) reject(userID, giveawayID uint64, action entity.GiveawayAction, err error) error {
	fields := errs.LogFields(err)
	fields["user_id"] = userID
	fields["giveaway_id"] = giveawayID
	fields["action"] = action
	s.logger.Info("Giveaway action rejected", fields)
	return err
}

func findEntry(ctx context.Context, repo persistence.GiveawayRepository, userID, giveawayID uint64, entryType entity.EntryType) (*entity.GiveawayEntry, error) {
	entry, err := repo.GetEntryForUpdate(ctx, userID, giveawayID, entryType)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return entry, err
}

func requireFreeEntry(ctx context.Context, repo persistence.GiveawayRepository, userID, giveawayID uint64) error {
	free, err := findEntry(ctx, repo, userID, giveawayID, entity.EntryTypeFree)
	if err != nil {
		return err
	}
	if free == nil || free.EntriesCount == 0 {
		return errs.ErrFreeEntryRequired
	}
	return nil
}

func newEntry(userID, giveawayID uint64, entryType entity.EntryType, now time.Time) *entity.GiveawayEntry {
	return &entity.GiveawayEntry{
		UserID:     userID,
		GiveawayID: giveawayID,
		EntryType:  entryType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// BonusGateKey names the completion gate entry for a user's bonus cooldown in a giveaway
func BonusGateKey(userID, giveawayID uint64) string {
	return fmt.Sprintf("bonus:%d:%d", userID, giveawayID)
}

func (s *Service) cooldownGateHit(ctx context.Context, userID, giveawayID uint64) (time.Time, bool) {
	if s.gate == nil {
		return time.Time{}, false
	}
	until, ok, err := s.gate.DoneUntil(ctx, BonusGateKey(userID, giveawayID))
	if err != nil {
		s.logger.Warn("Completion gate lookup failed", map[string]any{"user_id": userID, "error": err.Error()})
		return time.Time{}, false
	}
	if !ok || !s.timeProvider.Now().Before(until) {
		return time.Time{}, false
	}
	return until, true
}

func (s *Service) markCooldown(ctx context.Context, userID, giveawayID uint64, until time.Time) {
	if s.gate == nil {
		return
	}
	if err := s.gate.MarkDone(ctx, BonusGateKey(userID, giveawayID), until); err != nil {
		s.logger.Warn("Completion gate update failed", map[string]any{"user_id": userID, "error": err.Error()})
	}
}
