package ledger

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Ledger is the single writer of balances. Credit and Debit lock the user's
// balance row, so concurrent operations on one user serialize while different
// users proceed in parallel. Called inside an existing transaction they join it;
// otherwise they open their own.
type Ledger struct {
	runner       *txn.Runner
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewLedger creates a new ledger
func NewLedger(runner *txn.Runner, timeProvider coreport.TimeProvider, logger coreport.Logger) *Ledger {
	return &Ledger{
		runner:       runner,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Credit adds amount to the user's balance and appends the originating earn event, if any
func (l *Ledger) Credit(ctx context.Context, userID uint64, amount int64, event *entity.EarnEvent) (entity.BalanceSnapshot, error) {
	if amount <= 0 {
		return entity.BalanceSnapshot{}, errs.ErrInvalidAmount
	}

	var snapshot entity.BalanceSnapshot
	err := l.runner.Run(ctx, func(ctx context.Context) error {
		uow := l.runner.UnitOfWork()
		balances := uow.GetBalanceRepository(ctx)

		balance, err := l.lockActive(ctx, userID)
		if err != nil {
			return err
		}
		if err := balance.Credit(amount, l.timeProvider); err != nil {
			return err
		}
		if err := balances.Save(ctx, balance); err != nil {
			return err
		}

		if event != nil {
			event.UserID = userID
			event.Amount = amount
			if event.CreatedAt.IsZero() {
				event.CreatedAt = l.timeProvider.Now()
			}
			if err := uow.GetEarnEventRepository(ctx).Create(ctx, event); err != nil {
				return err
			}
		}

		snapshot = balance.Snapshot()
		return nil
	})
	if err != nil {
		return entity.BalanceSnapshot{}, err
	}

	l.logger.Debug("Credits added", map[string]any{
		"user_id": userID,
		"amount":  amount,
		"balance": snapshot.Current,
	})
	return snapshot, nil
}

// Debit removes amount from the user's balance; an insufficient balance leaves it untouched
func (l *Ledger) Debit(ctx context.Context, userID uint64, amount int64) (entity.BalanceSnapshot, error) {
	if amount <= 0 {
		return entity.BalanceSnapshot{}, errs.ErrInvalidAmount
	}

	var snapshot entity.BalanceSnapshot
	err := l.runner.Run(ctx, func(ctx context.Context) error {
		balances := l.runner.UnitOfWork().GetBalanceRepository(ctx)

		balance, err := l.lockActive(ctx, userID)
		if err != nil {
			return err
		}
		if err := balance.Debit(amount, l.timeProvider); err != nil {
			return err
		}
		if err := balances.Save(ctx, balance); err != nil {
			return err
		}

		snapshot = balance.Snapshot()
		return nil
	})
	if err != nil {
		return entity.BalanceSnapshot{}, err
	}

	l.logger.Debug("Credits spent", map[string]any{
		"user_id": userID,
		"amount":  amount,
		"balance": snapshot.Current,
	})
	return snapshot, nil
}

// Lock takes the user's balance row lock inside the caller's transaction and returns the balance.
// It fails with ErrAccountBanned when a ban committed before the lock was granted.
func (l *Ledger) Lock(ctx context.Context, userID uint64) (*entity.Balance, error) {
	if !l.runner.UnitOfWork().InTransaction(ctx) {
		return nil, errs.ErrInternalServer
	}
	return l.lockActive(ctx, userID)
}

// lockActive locks the balance row, then re-reads the ban flag. BanUser takes the
// same lock, so a ban either commits before this read or waits for our commit.
func (l *Ledger) lockActive(ctx context.Context, userID uint64) (*entity.Balance, error) {
	uow := l.runner.UnitOfWork()
	balance, err := uow.GetBalanceRepository(ctx).GetForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.EnsureActive(); err != nil {
		return nil, err
	}
	return balance, nil
}

// GetBalance returns the user's balance
func (l *Ledger) GetBalance(ctx context.Context, userID uint64) (*entity.BalanceSnapshot, error) {
	if _, err := l.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	balance, err := l.runner.UnitOfWork().GetBalanceRepository(ctx).GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := balance.Snapshot()
	return &snap, nil
}

// ListEarnEvents returns the user's earn history, newest first
func (l *Ledger) ListEarnEvents(ctx context.Context, userID uint64, limit int) ([]*entity.EarnEvent, error) {
	if _, err := l.ActiveUser(ctx, userID); err != nil {
		return nil, err
	}
	return l.runner.UnitOfWork().GetEarnEventRepository(ctx).ListByUser(ctx, userID, ClampLimit(limit))
}

// ActiveUser loads a user and fails with ErrAccountBanned for banned accounts.
// Every user-facing operation calls it before any other validation.
func (l *Ledger) ActiveUser(ctx context.Context, userID uint64) (*entity.User, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	user, err := l.runner.UnitOfWork().GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.EnsureActive(); err != nil {
		return nil, err
	}
	return user, nil
}

// ClampLimit bounds a page size to a sane range
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
