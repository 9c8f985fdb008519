package repository

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FraudFlagRepository implements persistence.FraudFlagRepository using GORM
type FraudFlagRepository struct {
	base
}

// NewFraudFlagRepository creates a new FraudFlagRepository instance
func NewFraudFlagRepository(db *gorm.DB, logger coreport.Logger) *FraudFlagRepository {
	return &FraudFlagRepository{base: newBase(db, logger)}
}

// Create appends a flag
func (r *FraudFlagRepository) Create(ctx context.Context, flag *entity.FraudFlag) error {
	flagModel := model.FraudFlag{
		UserID:    flag.UserID,
		DeviceID:  flag.DeviceID,
		FlagType:  string(flag.FlagType),
		Severity:  string(flag.Severity),
		Reason:    flag.Reason,
		Details:   datatypes.NewJSONType(flag.Details),
		Resolved:  flag.Resolved,
		CreatedAt: flag.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&flagModel).Error; err != nil {
		return r.handleDatabaseError("creating fraud flag", err, errs.ErrNotFound, map[string]any{
			"user_id":   flag.UserID,
			"flag_type": flag.FlagType,
		})
	}
	flag.ID = flagModel.ID
	return nil
}

// ListByUser returns the user's flags oldest first
func (r *FraudFlagRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.FraudFlag, error) {
	var flagModels []model.FraudFlag
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&flagModels).Error; err != nil {
		return nil, r.handleDatabaseError("listing fraud flags", err, errs.ErrNotFound, map[string]any{"user_id": userID})
	}

	flags := make([]*entity.FraudFlag, 0, len(flagModels))
	for _, m := range flagModels {
		flags = append(flags, &entity.FraudFlag{
			ID:        m.ID,
			UserID:    m.UserID,
			DeviceID:  m.DeviceID,
			FlagType:  entity.FlagType(m.FlagType),
			Severity:  entity.Severity(m.Severity),
			Reason:    m.Reason,
			Details:   m.Details.Data(),
			Resolved:  m.Resolved,
			CreatedAt: m.CreatedAt.UTC(),
		})
	}
	return flags, nil
}

// DeviceRepository implements persistence.DeviceRepository using GORM
type DeviceRepository struct {
	base
}

// NewDeviceRepository creates a new DeviceRepository instance
func NewDeviceRepository(db *gorm.DB, logger coreport.Logger) *DeviceRepository {
	return &DeviceRepository{base: newBase(db, logger)}
}

// GetByFingerprint returns ErrNotFound for a device never seen before
func (r *DeviceRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*entity.Device, error) {
	var deviceModel model.Device
	if err := r.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&deviceModel).Error; err != nil {
		return nil, r.handleDatabaseError("getting device", err, errs.ErrNotFound, map[string]any{"device_id": fingerprint})
	}
	return &entity.Device{
		Fingerprint: deviceModel.Fingerprint,
		UserID:      deviceModel.UserID,
		RiskScore:   deviceModel.RiskScore,
		Blocked:     deviceModel.Blocked,
		FirstSeenAt: deviceModel.FirstSeenAt.UTC(),
		LastSeenAt:  deviceModel.LastSeenAt.UTC(),
	}, nil
}

// Save upserts the device by fingerprint. An existing row keeps its blocked flag and
// never lowers its risk score; device is refreshed with the stored values.
func (r *DeviceRepository) Save(ctx context.Context, device *entity.Device) error {
	deviceModel := model.Device{
		Fingerprint: device.Fingerprint,
		UserID:      device.UserID,
		RiskScore:   device.RiskScore,
		Blocked:     device.Blocked,
		FirstSeenAt: device.FirstSeenAt,
		LastSeenAt:  device.LastSeenAt,
	}
	err := r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "fingerprint"}},
			DoUpdates: clause.Assignments(map[string]any{
				"risk_score":   gorm.Expr("GREATEST(devices.risk_score, excluded.risk_score)"),
				"last_seen_at": gorm.Expr("excluded.last_seen_at"),
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "risk_score"}, {Name: "blocked"}}},
	).Create(&deviceModel).Error
	if err != nil {
		return r.handleDatabaseError("saving device", err, errs.ErrNotFound, map[string]any{"device_id": device.Fingerprint})
	}
	device.RiskScore = deviceModel.RiskScore
	device.Blocked = deviceModel.Blocked
	return nil
}
