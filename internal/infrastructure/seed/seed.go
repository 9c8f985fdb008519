// Package seed installs the default catalog, a sample giveaway and optional demo accounts.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

// SampleGiveawayID is the id the sample giveaway is created under
const SampleGiveawayID uint64 = 1

func intPtr(v int) *int { return &v }

// DefaultCatalog returns the items installed into an empty catalog
func DefaultCatalog() []*entity.StoreItem {
	return []*entity.StoreItem{
		{
			Code:         "streak_saver",
			Name:         "Streak Saver",
			Description:  "Bridges one missed stretch of daily check-ins",
			CreditsCost:  50,
			ItemType:     entity.ItemTypeConsumable,
			MaxPerUser:   intPtr(5),
			StreakSavers: 1,
			Active:       true,
		},
		{
			Code:         "boost_2x_7d",
			Name:         "2x Boost (7 days)",
			Description:  "Doubles credits earned for a week",
			CreditsCost:  300,
			ItemType:     entity.ItemTypeBoost,
			DurationDays: intPtr(7),
			Active:       true,
		},
		{
			Code:        "avatar_frame_gold",
			Name:        "Gold Avatar Frame",
			CreditsCost: 150,
			ItemType:    entity.ItemTypeCosmetic,
			MaxPerUser:  intPtr(1),
			Active:      true,
		},
		{
			Code:        "badge_early_supporter",
			Name:        "Early Supporter Badge",
			CreditsCost: 100,
			ItemType:    entity.ItemTypeBadge,
			MaxPerUser:  intPtr(1),
			Active:      true,
		},
		{
			Code:        "giftcard_10",
			Name:        "$10 Gift Card",
			Description: "Delivered by email once fulfilled",
			CreditsCost: 2000,
			ItemType:    entity.ItemTypeGiftCard,
			Active:      true,
		},
		{
			Code:         "premium_30d",
			Name:         "Premium (30 days)",
			CreditsCost:  1500,
			ItemType:     entity.ItemTypeSubscription,
			DurationDays: intPtr(30),
			MaxPerUser:   intPtr(1),
			Active:       true,
		},
	}
}

// Seeder writes reference data through the persistence ports, so it serves every driver
type Seeder struct {
	runner       *txn.Runner
	users        usecase.UserUseCase
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewSeeder creates a new seeder. users may be nil when no demo accounts are wanted.
func NewSeeder(runner *txn.Runner, users usecase.UserUseCase, timeProvider coreport.TimeProvider, logger coreport.Logger) *Seeder {
	return &Seeder{
		runner:       runner,
		users:        users,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// SeedCatalog installs DefaultCatalog when no active item exists
func (s *Seeder) SeedCatalog(ctx context.Context) error {
	return s.runner.Run(ctx, func(ctx context.Context) error {
		catalog := s.runner.UnitOfWork().GetCatalogRepository(ctx)
		existing, err := catalog.ListActive(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			s.logger.Debug("Catalog already seeded", map[string]any{"items": len(existing)})
			return nil
		}

		now := s.timeProvider.Now().UTC()
		items := DefaultCatalog()
		for _, item := range items {
			item.CreatedAt = now
			if err := catalog.Create(ctx, item); err != nil {
				return err
			}
		}
		s.logger.Info("Seeded store catalog", map[string]any{"items": len(items)})
		return nil
	})
}

// SeedGiveaway creates an open sample giveaway under SampleGiveawayID if it is missing
func (s *Seeder) SeedGiveaway(ctx context.Context, bonusEntries int, duration time.Duration) error {
	return s.runner.Run(ctx, func(ctx context.Context) error {
		giveaways := s.runner.UnitOfWork().GetGiveawayRepository(ctx)
		_, err := giveaways.GetByID(ctx, SampleGiveawayID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrGiveawayNotFound) {
			return err
		}

		now := s.timeProvider.Now().UTC()
		giveaway := &entity.Giveaway{
			ID:                    SampleGiveawayID,
			Title:                 "Launch Giveaway",
			BonusEntriesAvailable: bonusEntries,
			StartsAt:              now,
			EndsAt:                now.Add(duration),
			Active:                true,
		}
		if err := giveaways.Create(ctx, giveaway); err != nil {
			return err
		}
		s.logger.Info("Seeded sample giveaway", map[string]any{
			"giveaway_id": giveaway.ID,
			"ends_at":     giveaway.EndsAt,
		})
		return nil
	})
}

// SeedUsers creates demo accounts that do not exist yet
func (s *Seeder) SeedUsers(ctx context.Context, userIDs []uint64) error {
	if s.users == nil {
		return nil
	}
	for _, id := range userIDs {
		_, err := s.users.CreateUser(ctx, usecase.CreateUserRequest{UserID: id})
		if err != nil && !errors.Is(err, errs.ErrDuplicateUser) {
			return err
		}
	}
	return nil
}

// Run seeds everything; giveaway and users are skipped when disabled by the caller
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if err := s.SeedCatalog(ctx); err != nil {
		s.logger.Error("Failed to seed catalog", map[string]any{"error": err.Error()})
		return err
	}
	if opts.GiveawayDuration > 0 {
		if err := s.SeedGiveaway(ctx, opts.GiveawayBonusEntries, opts.GiveawayDuration); err != nil {
			s.logger.Error("Failed to seed giveaway", map[string]any{"error": err.Error()})
			return err
		}
	}
	if err := s.SeedUsers(ctx, opts.DemoUserIDs); err != nil {
		s.logger.Error("Failed to seed demo users", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

// Options selects which optional fixtures Run installs
type Options struct {
	GiveawayBonusEntries int
	GiveawayDuration     time.Duration
	DemoUserIDs          []uint64
}
