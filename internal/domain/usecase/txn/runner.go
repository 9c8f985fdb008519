package txn

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
)

// Config controls transaction timeouts and conflict retries
type Config struct {
	Timeout       time.Duration // upper bound for a single attempt, lock waits included
	MaxRetries    int           // extra attempts after a lock or serialization conflict
	RetryInterval time.Duration
	MaxInterval   time.Duration
	JitterFactor  float64 // 0.0-1.0
}

// DefaultConfig returns the default runner configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       800 * time.Millisecond,
		MaxRetries:    3,
		RetryInterval: 20 * time.Millisecond,
		MaxInterval:   200 * time.Millisecond,
		JitterFactor:  0.2,
	}
}

// Runner executes functions inside a unit-of-work transaction
type Runner struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	config       Config
}

// NewRunner creates a new transaction runner
func NewRunner(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	config Config,
) *Runner {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Runner{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
		config:       config,
	}
}

// UnitOfWork exposes the underlying unit of work for repository access
func (r *Runner) UnitOfWork() persistence.UnitOfWork {
	return r.uow
}

// Run executes fn in a transaction and commits when it returns nil.
// When ctx already carries a transaction fn joins it and the outer caller owns commit and rollback.
// Lock and serialization conflicts are retried with jittered exponential backoff; every
// other error rolls back and is returned unchanged.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.uow.InTransaction(ctx) {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !errs.IsRetryable(err) || attempt == r.config.MaxRetries {
			break
		}

		backoff := r.backoff(attempt)
		r.logger.Warn("Transaction conflict, retrying", map[string]any{
			"attempt":     attempt + 1,
			"max_retries": r.config.MaxRetries,
			"error":       err.Error(),
			"retry_after": backoff.String(),
		})
		if sleepErr := r.timeProvider.Sleep(ctx, coreport.Duration(backoff)); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

func (r *Runner) runOnce(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	attemptCtx, cancel := r.timeProvider.WithTimeout(ctx, coreport.Duration(r.config.Timeout))
	defer cancel()

	txCtx, err := r.uow.Begin(attemptCtx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			r.rollback(txCtx)
			r.logger.Error("Panic inside transaction", map[string]any{"panic": fmt.Sprint(p)})
			err = fmt.Errorf("%w: panic in transaction: %v", errs.ErrInternalServer, p)
		}
	}()

	if err = fn(txCtx); err != nil {
		r.rollback(txCtx)
		return err
	}

	if err = r.uow.Commit(txCtx); err != nil {
		r.rollback(txCtx)
		return err
	}
	return nil
}

func (r *Runner) rollback(ctx context.Context) {
	if err := r.uow.Rollback(ctx); err != nil {
		r.logger.Warn("Failed to roll back transaction", map[string]any{"error": err.Error()})
	}
}

// backoff computes retryInterval * 2^attempt, capped and jittered
func (r *Runner) backoff(attempt int) time.Duration {
	backoff := r.config.RetryInterval * time.Duration(1<<uint(attempt))
	if r.config.MaxInterval > 0 && backoff > r.config.MaxInterval {
		backoff = r.config.MaxInterval
	}
	if r.config.JitterFactor > 0 {
		backoff += time.Duration(float64(backoff) * r.config.JitterFactor * rand.Float64())
	}
	return backoff
}
