package fraud

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
)

const flagWriteTimeout = 5 * time.Second

// Recorder appends fraud flags off the request path. A failed write is logged
// and dropped; it never reaches the earn or spend that triggered it.
type Recorder struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	wg           sync.WaitGroup
}

// NewRecorder creates a new fraud flag recorder
func NewRecorder(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *Recorder {
	return &Recorder{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Flag schedules a flag write and returns immediately
func (r *Recorder) Flag(flag entity.FraudFlag) {
	if flag.CreatedAt.IsZero() {
		flag.CreatedAt = r.timeProvider.Now()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// detached from the request: the caller's transaction has committed by now
		ctx, cancel := context.WithTimeout(context.Background(), flagWriteTimeout)
		defer cancel()

		if err := r.uow.GetFraudFlagRepository(ctx).Create(ctx, &flag); err != nil {
			fields := errs.LogFields(err)
			fields["user_id"] = flag.UserID
			fields["flag_type"] = flag.FlagType
			r.logger.Warn("Failed to record fraud flag", fields)
			return
		}

		r.logger.Info("Fraud flag recorded", map[string]any{
			"user_id":   flag.UserID,
			"device_id": flag.DeviceID,
			"flag_type": flag.FlagType,
			"severity":  flag.Severity,
		})
	}()
}

// Wait blocks until every scheduled write finished
func (r *Recorder) Wait() {
	r.wg.Wait()
}
