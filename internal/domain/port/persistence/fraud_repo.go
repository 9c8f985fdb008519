package persistence

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// FraudFlagRepository is the append-only store of detection records
type FraudFlagRepository interface {
	Create(ctx context.Context, flag *entity.FraudFlag) error
	ListByUser(ctx context.Context, userID uint64) ([]*entity.FraudFlag, error)
}

// DeviceRepository stores fingerprinted devices
type DeviceRepository interface {
	// GetByFingerprint returns a device
	//
	// Possible errors:
	// - ErrNotFound: If the fingerprint was never seen
	GetByFingerprint(ctx context.Context, fingerprint string) (*entity.Device, error)

	// Save inserts or updates a device keyed by fingerprint
	Save(ctx context.Context, device *entity.Device) error
}
