package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/testutil"
)

func TestCredit(t *testing.T) {
	ctx := context.Background()

	t.Run("Credits balance and appends the event", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)

		event := &entity.EarnEvent{Type: entity.EarnTypeAdView, IdempotencyToken: "ad-1"}
		snap, err := env.Ledger.Credit(ctx, 1, 10, event)
		require.NoError(t, err)

		assert.Equal(t, int64(10), snap.Current)
		assert.Equal(t, int64(10), snap.LifetimeEarned)
		assert.NotZero(t, event.ID)
		assert.Equal(t, uint64(1), event.UserID)
		assert.Equal(t, int64(10), event.Amount)

		events, err := env.Ledger.ListEarnEvents(ctx, 1, 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "ad-1", events[0].IdempotencyToken)
	})

	t.Run("Rejects non-positive amounts before touching state", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)

		_, err := env.Ledger.Credit(ctx, 1, 0, &entity.EarnEvent{Type: entity.EarnTypeCheckin})
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		events, err := env.Ledger.ListEarnEvents(ctx, 1, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Unknown user", func(t *testing.T) {
		env := testutil.NewEnv(t)
		_, err := env.Ledger.Credit(ctx, 404, 10, nil)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("Event insert failure rolls back the credit", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)

		_, err := env.Ledger.Credit(ctx, 1, 10, &entity.EarnEvent{Type: entity.EarnTypeAdView, IdempotencyToken: "dup"})
		require.NoError(t, err)

		_, err = env.Ledger.Credit(ctx, 1, 10, &entity.EarnEvent{Type: entity.EarnTypeAdView, IdempotencyToken: "dup"})
		assert.ErrorIs(t, err, errs.ErrDuplicateSubmission)
		assert.Equal(t, int64(10), env.Balance(t, 1).Current())
	})
}

func TestDebit(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 30)

	snap, err := env.Ledger.Debit(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(10), snap.Current)
	assert.Equal(t, int64(20), snap.LifetimeSpent)

	_, err = env.Ledger.Debit(ctx, 1, 11)
	assert.True(t, errs.IsInsufficientBalanceError(err))

	b := env.Balance(t, 1)
	assert.Equal(t, int64(10), b.Current())
	assert.Equal(t, int64(20), b.LifetimeSpent())
	assert.Equal(t, b.LifetimeEarned()-b.LifetimeSpent(), b.Current())
}

func TestConcurrentCreditsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.CreateUser(t, 1, 10)

	const n = 100
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.Ledger.Credit(ctx, 1, 10, nil); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("credit failed: %v", err)
	}

	b := env.Balance(t, 1)
	assert.Equal(t, int64(1000), b.Current())
	assert.Equal(t, int64(1000), b.LifetimeEarned())
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 100)

	const n = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Ledger.Debit(ctx, 1, 10)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, errs.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	b := env.Balance(t, 1)
	assert.Equal(t, int64(0), b.Current())
	assert.Equal(t, int64(100), b.LifetimeSpent())
}

func TestReadsFailForBannedUsers(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	user := env.CreateUser(t, 1, 10)
	user.Ban("bot farm", env.Clock)
	require.NoError(t, env.Store.GetUserRepository(ctx).Update(ctx, user))

	_, err := env.Ledger.GetBalance(ctx, 1)
	assert.ErrorIs(t, err, errs.ErrAccountBanned)
	_, err = env.Ledger.ListEarnEvents(ctx, 1, 10)
	assert.ErrorIs(t, err, errs.ErrAccountBanned)
}

func TestWritesRecheckBanUnderLock(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 30)

	// the ban lands after a caller's pre-transaction check passed
	user, err := env.Store.GetUserRepository(ctx).GetByID(ctx, 1)
	require.NoError(t, err)
	user.Ban("bot farm", env.Clock)
	require.NoError(t, env.Store.GetUserRepository(ctx).Update(ctx, user))

	_, err = env.Ledger.Credit(ctx, 1, 10, &entity.EarnEvent{Type: entity.EarnTypeCheckin})
	assert.ErrorIs(t, err, errs.ErrAccountBanned)
	_, err = env.Ledger.Debit(ctx, 1, 10)
	assert.ErrorIs(t, err, errs.ErrAccountBanned)
	err = env.Runner.Run(ctx, func(ctx context.Context) error {
		_, err := env.Ledger.Lock(ctx, 1)
		return err
	})
	assert.ErrorIs(t, err, errs.ErrAccountBanned)

	assert.Equal(t, int64(30), env.Balance(t, 1).Current())
	events, err := env.Store.GetEarnEventRepository(ctx).ListByUser(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ledger.ClampLimit(0))
	assert.Equal(t, 10, ledger.ClampLimit(10))
	assert.Equal(t, 500, ledger.ClampLimit(10_000))
}
