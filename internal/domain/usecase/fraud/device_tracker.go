package fraud

import (
	"context"
	"errors"
	"strings"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
)

// sharedDevicePenalty is added to a device's risk each time it shows up for another account
const sharedDevicePenalty = 25

// DeviceTracker records device sightings and produces the risk signal read by the earn path
type DeviceTracker struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewDeviceTracker creates a new device tracker
func NewDeviceTracker(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *DeviceTracker {
	return &DeviceTracker{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Observe upserts the device and returns its current signal.
// A device first seen for one user and later presented by another gains risk.
func (t *DeviceTracker) Observe(ctx context.Context, userID uint64, fingerprint string) (entity.DeviceSignal, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return entity.DeviceSignal{}, nil
	}

	repo := t.uow.GetDeviceRepository(ctx)
	now := t.timeProvider.Now()

	device, err := repo.GetByFingerprint(ctx, fingerprint)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		device = &entity.Device{
			Fingerprint: fingerprint,
			UserID:      userID,
			FirstSeenAt: now,
		}
	case err != nil:
		return entity.DeviceSignal{}, err
	}

	if device.UserID != userID {
		device.RiskScore = min(device.RiskScore+sharedDevicePenalty, 100)
		t.logger.Warn("Device presented by another account", map[string]any{
			"device_id":  fingerprint,
			"owner_id":   device.UserID,
			"user_id":    userID,
			"risk_score": device.RiskScore,
		})
	}
	device.LastSeenAt = now

	if err := repo.Save(ctx, device); err != nil {
		return entity.DeviceSignal{}, err
	}

	return entity.DeviceSignal{
		Fingerprint: device.Fingerprint,
		RiskScore:   device.RiskScore,
		Blocked:     device.Blocked,
	}, nil
}
