package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

// Service is the redemption engine
type Service struct {
	runner       *txn.Runner
	ledger       *ledger.Ledger
	validate     *validator.Validate
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new store service
func NewService(runner *txn.Runner, ldg *ledger.Ledger, timeProvider coreport.TimeProvider, logger coreport.Logger) *Service {
	return &Service{
		runner:       runner,
		ledger:       ldg,
		validate:     validator.New(),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// ListCatalog returns the active catalog
func (s *Service) ListCatalog(ctx context.Context) ([]*entity.StoreItem, error) {
	return s.runner.UnitOfWork().GetCatalogRepository(ctx).ListActive(ctx)
}

// Redeem spends credits on a catalog item. Every check and every write happens in
// one transaction under the user's balance lock, so a failure leaves no trace.
func (s *Service) Redeem(ctx context.Context, userID uint64, req usecase.RedeemRequest) (*usecase.RedemptionResult, error) {
	if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	if req.ItemID == 0 {
		return nil, errs.ErrInvalidRequest
	}
	email := strings.TrimSpace(req.Email)

	var result *usecase.RedemptionResult
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		r, err := s.redeem(ctx, userID, req.ItemID, email)
		result = r
		return err
	})
	if err != nil {
		fields := errs.LogFields(err)
		fields["user_id"] = userID
		fields["item_id"] = req.ItemID
		s.logger.Info("Redemption rejected", fields)
		return nil, err
	}

	s.logger.Info("Item redeemed", map[string]any{
		"user_id":       userID,
		"item_id":       req.ItemID,
		"credits_spent": result.Redemption.CreditsSpent,
		"status":        result.Redemption.Status,
		"balance":       result.Balance.Current,
	})
	return result, nil
}

func (s *Service) redeem(ctx context.Context, userID, itemID uint64, email string) (*usecase.RedemptionResult, error) {
	uow := s.runner.UnitOfWork()
	now := s.timeProvider.Now()

	// 1. item
	item, err := uow.GetCatalogRepository(ctx).GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, errs.ErrItemNotFound
	}

	// 2. affordability, read under the lock before any mutation
	balance, err := s.ledger.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !balance.CanAfford(item.CreditsCost) {
		return nil, errs.NewInsufficientBalanceError(userID, item.CreditsCost, balance.Current())
	}

	// 3. ownership cap
	inventory := uow.GetInventoryRepository(ctx)
	entry, err := inventory.GetForUpdate(ctx, userID, itemID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if item.MaxPerUser != nil {
		owned, err := s.ownedCount(ctx, userID, item, entry)
		if err != nil {
			return nil, err
		}
		if owned >= int64(*item.MaxPerUser) {
			return nil, errs.ErrOwnershipLimitReached
		}
	}

	// 4. delivery email
	if item.RequiresEmail() {
		if email == "" || s.validate.Var(email, "email") != nil {
			return nil, errs.ErrEmailRequired
		}
	} else {
		email = ""
	}

	// active-item exclusivity
	if item.ItemType == entity.ItemTypeBoost && entry != nil && entry.ActiveAt(now) {
		return nil, errs.ErrItemAlreadyActive
	}

	// 5. debit, record, grant
	snapshot, err := s.ledger.Debit(ctx, userID, item.CreditsCost)
	if err != nil {
		return nil, err
	}

	redemption := entity.NewRedemption(userID, item, email, now)
	if err := uow.GetRedemptionRepository(ctx).Create(ctx, redemption); err != nil {
		return nil, err
	}

	result := &usecase.RedemptionResult{Balance: snapshot, Redemption: redemption}
	if item.RequiresEmail() {
		return result, nil
	}

	if entry == nil {
		entry = &entity.InventoryEntry{UserID: userID, ItemID: itemID, CreatedAt: now}
	}
	entry.Quantity++
	entry.UpdatedAt = now
	if !item.IsConsumable() {
		entry.Activate(item, now)
	}
	if err := inventory.Save(ctx, entry); err != nil {
		return nil, err
	}

	if item.IsConsumable() && item.StreakSavers > 0 {
		streaks := uow.GetStreakRepository(ctx)
		streak, err := streaks.GetForUpdate(ctx, userID)
		if err != nil {
			return nil, err
		}
		streak.AddSavers(item.StreakSavers, now)
		if err := streaks.Save(ctx, streak); err != nil {
			return nil, err
		}
	}

	view := toInventoryItem(entry, item, now)
	result.Inventory = &view
	return result, nil
}

// ownedCount counts prior redemptions for items that leave no ownership row
// (consumables, gift cards) and owned quantity for everything else
func (s *Service) ownedCount(ctx context.Context, userID uint64, item *entity.StoreItem, entry *entity.InventoryEntry) (int64, error) {
	if item.IsConsumable() || item.RequiresEmail() {
		return s.runner.UnitOfWork().GetRedemptionRepository(ctx).CountByUserAndItem(ctx, userID, item.ID)
	}
	if entry == nil {
		return 0, nil
	}
	return int64(entry.Quantity), nil
}

// GetInventory lists the user's inventory with expiry evaluated against the clock
func (s *Service) GetInventory(ctx context.Context, userID uint64) ([]usecase.InventoryItem, error) {
	if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}

	uow := s.runner.UnitOfWork()
	entries, err := uow.GetInventoryRepository(ctx).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	catalog := uow.GetCatalogRepository(ctx)
	items := make([]usecase.InventoryItem, 0, len(entries))
	for _, e := range entries {
		item, err := catalog.GetByID(ctx, e.ItemID)
		if err != nil && !errors.Is(err, errs.ErrItemNotFound) {
			return nil, err
		}
		items = append(items, toInventoryItem(e, item, now))
	}
	return items, nil
}

// ListRedemptions returns the user's redemption history, newest first
func (s *Service) ListRedemptions(ctx context.Context, userID uint64, limit int) ([]*entity.Redemption, error) {
	if _, err := s.ledger.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.runner.UnitOfWork().GetRedemptionRepository(ctx).ListByUser(ctx, userID, ledger.ClampLimit(limit))
}

// FulfillRedemption completes a pending gift card redemption
func (s *Service) FulfillRedemption(ctx context.Context, redemptionID uint64, code string) (*entity.Redemption, error) {
	code = strings.TrimSpace(code)
	if redemptionID == 0 || code == "" {
		return nil, errs.ErrInvalidRequest
	}

	var redemption *entity.Redemption
	err := s.runner.Run(ctx, func(ctx context.Context) error {
		repo := s.runner.UnitOfWork().GetRedemptionRepository(ctx)
		r, err := repo.GetForUpdate(ctx, redemptionID)
		if err != nil {
			return err
		}
		if err := r.Fulfill(code, s.timeProvider.Now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		redemption = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Redemption fulfilled", map[string]any{
		"redemption_id": redemptionID,
		"user_id":       redemption.UserID,
	})
	return redemption, nil
}

func toInventoryItem(e *entity.InventoryEntry, item *entity.StoreItem, now time.Time) usecase.InventoryItem {
	view := usecase.InventoryItem{
		ItemID:      e.ItemID,
		Quantity:    e.Quantity,
		Active:      e.ActiveAt(now),
		Expired:     e.IsExpired(now),
		ActivatedAt: e.ActivatedAt,
		ExpiresAt:   e.ExpiresAt,
	}
	if item != nil {
		view.Code = item.Code
		view.ItemType = item.ItemType
	}
	return view
}
