package repository

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// CatalogRepository implements persistence.CatalogRepository using GORM
type CatalogRepository struct {
	base
}

// NewCatalogRepository creates a new CatalogRepository instance
func NewCatalogRepository(db *gorm.DB, logger coreport.Logger) *CatalogRepository {
	return &CatalogRepository{base: newBase(db, logger)}
}

func storeItemToEntity(m *model.StoreItem) *entity.StoreItem {
	return &entity.StoreItem{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		CreditsCost:  m.CreditsCost,
		ItemType:     entity.ItemType(m.ItemType),
		DurationDays: m.DurationDays,
		MaxPerUser:   m.MaxPerUser,
		StreakSavers: m.StreakSavers,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

// GetByID returns the item whether or not it is active
func (r *CatalogRepository) GetByID(ctx context.Context, id uint64) (*entity.StoreItem, error) {
	var itemModel model.StoreItem
	if err := r.db.WithContext(ctx).First(&itemModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting store item", err, errs.ErrItemNotFound, map[string]any{"item_id": id})
	}
	return storeItemToEntity(&itemModel), nil
}

// ListActive returns the active catalog, cheapest first
func (r *CatalogRepository) ListActive(ctx context.Context) ([]*entity.StoreItem, error) {
	var itemModels []model.StoreItem
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("credits_cost ASC, id ASC").
		Find(&itemModels).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing store items", err, errs.ErrItemNotFound, nil)
	}

	items := make([]*entity.StoreItem, 0, len(itemModels))
	for i := range itemModels {
		items = append(items, storeItemToEntity(&itemModels[i]))
	}
	return items, nil
}

// Create inserts a catalog item, keeping a caller-supplied ID
func (r *CatalogRepository) Create(ctx context.Context, item *entity.StoreItem) error {
	itemModel := model.StoreItem{
		ID:           item.ID,
		Code:         item.Code,
		Name:         item.Name,
		Description:  item.Description,
		CreditsCost:  item.CreditsCost,
		ItemType:     string(item.ItemType),
		DurationDays: item.DurationDays,
		MaxPerUser:   item.MaxPerUser,
		StreakSavers: item.StreakSavers,
		Active:       item.Active,
		CreatedAt:    item.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&itemModel).Error; err != nil {
		return r.handleDatabaseError("creating store item", err, errs.ErrItemNotFound, map[string]any{"code": item.Code})
	}
	item.ID = itemModel.ID
	return nil
}

// InventoryRepository implements persistence.InventoryRepository using GORM
type InventoryRepository struct {
	base
}

// NewInventoryRepository creates a new InventoryRepository instance
func NewInventoryRepository(db *gorm.DB, logger coreport.Logger) *InventoryRepository {
	return &InventoryRepository{base: newBase(db, logger)}
}

func inventoryToEntity(m *model.InventoryEntry) *entity.InventoryEntry {
	return &entity.InventoryEntry{
		ID:          m.ID,
		UserID:      m.UserID,
		ItemID:      m.ItemID,
		Quantity:    m.Quantity,
		IsActive:    m.IsActive,
		ActivatedAt: m.ActivatedAt,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// GetForUpdate locks the user's row for the item; ErrNotFound when the user never owned it
func (r *InventoryRepository) GetForUpdate(ctx context.Context, userID, itemID uint64) (*entity.InventoryEntry, error) {
	var entryModel model.InventoryEntry
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&entryModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking inventory", err, errs.ErrNotFound, map[string]any{
			"user_id": userID,
			"item_id": itemID,
		})
	}
	return inventoryToEntity(&entryModel), nil
}

// Save inserts a new row or rewrites an existing one
func (r *InventoryRepository) Save(ctx context.Context, entry *entity.InventoryEntry) error {
	entryModel := model.InventoryEntry{
		ID:          entry.ID,
		UserID:      entry.UserID,
		ItemID:      entry.ItemID,
		Quantity:    entry.Quantity,
		IsActive:    entry.IsActive,
		ActivatedAt: entry.ActivatedAt,
		ExpiresAt:   entry.ExpiresAt,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}

	db := r.db.WithContext(ctx).Omit("Item")
	var err error
	if entry.ID == 0 {
		err = db.Create(&entryModel).Error
	} else {
		err = db.Save(&entryModel).Error
	}
	if err != nil {
		return r.handleDatabaseError("saving inventory", err, errs.ErrNotFound, map[string]any{
			"user_id": entry.UserID,
			"item_id": entry.ItemID,
		})
	}
	entry.ID = entryModel.ID
	return nil
}

// ListByUser returns the user's inventory rows
func (r *InventoryRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.InventoryEntry, error) {
	var entryModels []model.InventoryEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&entryModels).Error; err != nil {
		return nil, r.handleDatabaseError("listing inventory", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}

	entries := make([]*entity.InventoryEntry, 0, len(entryModels))
	for i := range entryModels {
		entries = append(entries, inventoryToEntity(&entryModels[i]))
	}
	return entries, nil
}

// RedemptionRepository implements persistence.RedemptionRepository using GORM
type RedemptionRepository struct {
	base
}

// NewRedemptionRepository creates a new RedemptionRepository instance
func NewRedemptionRepository(db *gorm.DB, logger coreport.Logger) *RedemptionRepository {
	return &RedemptionRepository{base: newBase(db, logger)}
}

func redemptionToEntity(m *model.Redemption) *entity.Redemption {
	return &entity.Redemption{
		ID:              m.ID,
		UserID:          m.UserID,
		ItemID:          m.ItemID,
		CreditsSpent:    m.CreditsSpent,
		Status:          entity.RedemptionStatus(m.Status),
		DeliveryEmail:   m.DeliveryEmail,
		FulfillmentCode: m.FulfillmentCode,
		CreatedAt:       m.CreatedAt.UTC(),
		FulfilledAt:     m.FulfilledAt,
	}
}

func redemptionToModel(r *entity.Redemption) model.Redemption {
	return model.Redemption{
		ID:              r.ID,
		UserID:          r.UserID,
		ItemID:          r.ItemID,
		CreditsSpent:    r.CreditsSpent,
		Status:          string(r.Status),
		DeliveryEmail:   r.DeliveryEmail,
		FulfillmentCode: r.FulfillmentCode,
		CreatedAt:       r.CreatedAt,
		FulfilledAt:     r.FulfilledAt,
	}
}

// Create records a redemption
func (r *RedemptionRepository) Create(ctx context.Context, redemption *entity.Redemption) error {
	redemptionModel := redemptionToModel(redemption)
	if err := r.db.WithContext(ctx).Omit("Item").Create(&redemptionModel).Error; err != nil {
		return r.handleDatabaseError("creating redemption", err, errs.ErrRedemptionNotFound, map[string]any{
			"user_id": redemption.UserID,
			"item_id": redemption.ItemID,
		})
	}
	redemption.ID = redemptionModel.ID
	return nil
}

// CountByUserAndItem counts every redemption the user made of the item
func (r *RedemptionRepository) CountByUserAndItem(ctx context.Context, userID, itemID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Redemption{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error
	if err != nil {
		return 0, r.handleDatabaseError("counting redemptions", err, errs.ErrRedemptionNotFound, map[string]any{"user_id": userID})
	}
	return count, nil
}

// ListByUser returns the newest redemptions first
func (r *RedemptionRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Redemption, error) {
	var redemptionModels []model.Redemption
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&redemptionModels).Error; err != nil {
		return nil, r.handleDatabaseError("listing redemptions", err, errs.ErrRedemptionNotFound, map[string]any{"user_id": userID})
	}

	redemptions := make([]*entity.Redemption, 0, len(redemptionModels))
	for i := range redemptionModels {
		redemptions = append(redemptions, redemptionToEntity(&redemptionModels[i]))
	}
	return redemptions, nil
}

// GetForUpdate locks a redemption row
func (r *RedemptionRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Redemption, error) {
	var redemptionModel model.Redemption
	if err := forUpdate(r.db.WithContext(ctx)).First(&redemptionModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("locking redemption", err, errs.ErrRedemptionNotFound, map[string]any{"redemption_id": id})
	}
	return redemptionToEntity(&redemptionModel), nil
}

// Update writes the fulfillment columns
func (r *RedemptionRepository) Update(ctx context.Context, redemption *entity.Redemption) error {
	result := r.db.WithContext(ctx).Model(&model.Redemption{}).
		Where("id = ?", redemption.ID).
		Updates(map[string]any{
			"status":           string(redemption.Status),
			"fulfillment_code": redemption.FulfillmentCode,
			"fulfilled_at":     redemption.FulfilledAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating redemption", result.Error, errs.ErrRedemptionNotFound, map[string]any{"redemption_id": redemption.ID})
	}
	if result.RowsAffected == 0 {
		return errs.ErrRedemptionNotFound
	}
	return nil
}
