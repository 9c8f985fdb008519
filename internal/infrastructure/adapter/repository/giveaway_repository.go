package repository

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// GiveawayRepository implements persistence.GiveawayRepository using GORM
type GiveawayRepository struct {
	base
}

// NewGiveawayRepository creates a new GiveawayRepository instance
func NewGiveawayRepository(db *gorm.DB, logger coreport.Logger) *GiveawayRepository {
	return &GiveawayRepository{base: newBase(db, logger)}
}

func giveawayEntryToEntity(m *model.GiveawayEntry) *entity.GiveawayEntry {
	return &entity.GiveawayEntry{
		ID:           m.ID,
		UserID:       m.UserID,
		GiveawayID:   m.GiveawayID,
		EntryType:    entity.EntryType(m.EntryType),
		EntriesCount: m.EntriesCount,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// GetByID retrieves a giveaway
func (r *GiveawayRepository) GetByID(ctx context.Context, id uint64) (*entity.Giveaway, error) {
	var giveawayModel model.Giveaway
	if err := r.db.WithContext(ctx).First(&giveawayModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting giveaway", err, errs.ErrGiveawayNotFound, map[string]any{"giveaway_id": id})
	}
	return &entity.Giveaway{
		ID:                    giveawayModel.ID,
		Title:                 giveawayModel.Title,
		BonusEntriesAvailable: giveawayModel.BonusEntriesAvailable,
		StartsAt:              giveawayModel.StartsAt.UTC(),
		EndsAt:                giveawayModel.EndsAt.UTC(),
		Active:                giveawayModel.Active,
	}, nil
}

// Create inserts a giveaway
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *entity.Giveaway) error {
	giveawayModel := model.Giveaway{
		ID:                    giveaway.ID,
		Title:                 giveaway.Title,
		BonusEntriesAvailable: giveaway.BonusEntriesAvailable,
		StartsAt:              giveaway.StartsAt,
		EndsAt:                giveaway.EndsAt,
		Active:                giveaway.Active,
	}
	if err := r.db.WithContext(ctx).Create(&giveawayModel).Error; err != nil {
		return r.handleDatabaseError("creating giveaway", err, errs.ErrGiveawayNotFound, map[string]any{"title": giveaway.Title})
	}
	giveaway.ID = giveawayModel.ID
	return nil
}

// GetEntryForUpdate locks the user's entry row of one type; ErrNotFound when absent
func (r *GiveawayRepository) GetEntryForUpdate(ctx context.Context, userID, giveawayID uint64, entryType entity.EntryType) (*entity.GiveawayEntry, error) {
	var entryModel model.GiveawayEntry
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND giveaway_id = ? AND entry_type = ?", userID, giveawayID, string(entryType)).
		First(&entryModel).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking giveaway entry", err, errs.ErrNotFound, map[string]any{
			"user_id":     userID,
			"giveaway_id": giveawayID,
			"entry_type":  entryType,
		})
	}
	return giveawayEntryToEntity(&entryModel), nil
}

// SaveEntry inserts or rewrites an entry row. A concurrent first insert of the same row is ErrAlreadyClaimed.
func (r *GiveawayRepository) SaveEntry(ctx context.Context, entry *entity.GiveawayEntry) error {
	entryModel := model.GiveawayEntry{
		ID:           entry.ID,
		UserID:       entry.UserID,
		GiveawayID:   entry.GiveawayID,
		EntryType:    string(entry.EntryType),
		EntriesCount: entry.EntriesCount,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}

	db := r.db.WithContext(ctx).Omit("Giveaway")
	var err error
	if entry.ID == 0 {
		err = db.Create(&entryModel).Error
	} else {
		err = db.Save(&entryModel).Error
	}
	if err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrAlreadyClaimed
		}
		return r.handleDatabaseError("saving giveaway entry", err, errs.ErrNotFound, map[string]any{
			"user_id":     entry.UserID,
			"giveaway_id": entry.GiveawayID,
		})
	}
	entry.ID = entryModel.ID
	return nil
}

// ListEntries returns the user's entry rows for a giveaway
func (r *GiveawayRepository) ListEntries(ctx context.Context, userID, giveawayID uint64) ([]*entity.GiveawayEntry, error) {
	var entryModels []model.GiveawayEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND giveaway_id = ?", userID, giveawayID).
		Order("id ASC").
		Find(&entryModels).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing giveaway entries", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}

	entries := make([]*entity.GiveawayEntry, 0, len(entryModels))
	for i := range entryModels {
		entries = append(entries, giveawayEntryToEntity(&entryModels[i]))
	}
	return entries, nil
}
