package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Unique indexes on earn_events; the lesson one is partial and created by the migration
const (
	EarnEventTokenIndex  = "idx_earn_events_user_token"
	EarnEventLessonIndex = "idx_earn_events_user_lesson"
)

// EarnEventRepository implements persistence.EarnEventRepository using GORM
type EarnEventRepository struct {
	base
}

// NewEarnEventRepository creates a new EarnEventRepository instance
func NewEarnEventRepository(db *gorm.DB, logger coreport.Logger) *EarnEventRepository {
	return &EarnEventRepository{base: newBase(db, logger)}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func earnEventToEntity(m *model.EarnEvent) *entity.EarnEvent {
	e := &entity.EarnEvent{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      entity.EarnType(m.Type),
		Amount:    m.Amount,
		DeviceID:  m.DeviceID,
		Metadata:  m.Metadata.Data(),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.IdempotencyToken != nil {
		e.IdempotencyToken = *m.IdempotencyToken
	}
	if m.ReferenceID != nil {
		e.ReferenceID = *m.ReferenceID
	}
	return e
}

// Create appends an earn event. Unique index hits are reported as the domain
// rejection they stand for, so a race lost at commit time reads like one lost earlier.
func (r *EarnEventRepository) Create(ctx context.Context, event *entity.EarnEvent) error {
	eventModel := model.EarnEvent{
		UserID:           event.UserID,
		Type:             string(event.Type),
		Amount:           event.Amount,
		IdempotencyToken: optionalString(event.IdempotencyToken),
		ReferenceID:      optionalString(event.ReferenceID),
		DeviceID:         event.DeviceID,
		Metadata:         datatypes.NewJSONType(event.Metadata),
		CreatedAt:        event.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&eventModel).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			switch r.errorClassifier.ConstraintName(err) {
			case EarnEventTokenIndex:
				return errs.NewDuplicateSubmissionError(event.UserID, event.IdempotencyToken)
			case EarnEventLessonIndex:
				return fmt.Errorf("%w: lesson module %s", errs.ErrAlreadyCompleted, event.ReferenceID)
			}
		}
		return r.handleDatabaseError("creating earn event", err, errs.ErrNotFound, map[string]any{
			"user_id": event.UserID,
			"type":    event.Type,
		})
	}

	event.ID = eventModel.ID
	return nil
}

// ExistsByToken reports whether the user already submitted the ad token
func (r *EarnEventRepository) ExistsByToken(ctx context.Context, userID uint64, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.EarnEvent{}).
		Where("user_id = ? AND idempotency_token = ?", userID, token).
		Count(&count).Error
	if err != nil {
		return false, r.handleDatabaseError("checking idempotency token", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}
	return count > 0, nil
}

// ExistsByReference reports whether an event of the type already references the id
func (r *EarnEventRepository) ExistsByReference(ctx context.Context, userID uint64, eventType entity.EarnType, referenceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.EarnEvent{}).
		Where("user_id = ? AND type = ? AND reference_id = ?", userID, string(eventType), referenceID).
		Count(&count).Error
	if err != nil {
		return false, r.handleDatabaseError("checking reference", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}
	return count > 0, nil
}

// SummarizeRange aggregates the user's events in [from, to) by type
func (r *EarnEventRepository) SummarizeRange(ctx context.Context, userID uint64, from, to time.Time) (entity.DailyEarnings, error) {
	var rows []model.EarnTypeSum
	err := r.db.WithContext(ctx).Model(&model.EarnEvent{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return entity.DailyEarnings{}, r.handleDatabaseError("summarizing earn events", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}
	return foldEarnSums(rows), nil
}

func foldEarnSums(rows []model.EarnTypeSum) entity.DailyEarnings {
	var sum entity.DailyEarnings
	for _, row := range rows {
		switch entity.EarnType(row.Type) {
		case entity.EarnTypeAdView:
			sum.AdTotal += row.Total
			sum.AdCount += row.Count
		case entity.EarnTypeCheckin:
			sum.NonAdTotal += row.Total
			sum.CheckinCount += row.Count
		case entity.EarnTypeLesson:
			sum.NonAdTotal += row.Total
			sum.LessonCount += row.Count
		}
	}
	return sum
}

// ListByUser returns the newest events first
func (r *EarnEventRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.EarnEvent, error) {
	var eventModels []model.EarnEvent
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&eventModels).Error; err != nil {
		return nil, r.handleDatabaseError("listing earn events", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}

	events := make([]*entity.EarnEvent, 0, len(eventModels))
	for i := range eventModels {
		events = append(events, earnEventToEntity(&eventModels[i]))
	}
	return events, nil
}
