package txn_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
	"github.com/amirhossein-jamali/credits-ledger/internal/testutil"
)

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			_, err := env.Ledger.Credit(ctx, 1, 25, nil)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, int64(25), env.Balance(t, 1).Current())
	})

	t.Run("Rolls back every write when fn fails", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)
		boom := errors.New("boom")

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			if _, err := env.Ledger.Credit(ctx, 1, 25, nil); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(0), env.Balance(t, 1).Current())
	})

	t.Run("Nested runs join the outer transaction", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			if _, err := env.Ledger.Credit(ctx, 1, 40, nil); err != nil {
				return err
			}
			// the debit sees the uncommitted credit
			if _, err := env.Ledger.Debit(ctx, 1, 30); err != nil {
				return err
			}
			return errs.ErrItemNotFound
		})
		assert.ErrorIs(t, err, errs.ErrItemNotFound)

		b := env.Balance(t, 1)
		assert.Equal(t, int64(0), b.Current())
		assert.Equal(t, int64(0), b.LifetimeEarned())
	})

	t.Run("Retries lock conflicts", func(t *testing.T) {
		env := testutil.NewEnv(t)
		attempts := 0

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errs.ErrUserLocked
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		env := testutil.NewEnv(t)
		attempts := 0

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			attempts++
			return errs.ErrUserLocked
		})
		assert.ErrorIs(t, err, errs.ErrUserLocked)
		assert.Equal(t, txn.DefaultConfig().MaxRetries+1, attempts)
	})

	t.Run("Does not retry domain errors", func(t *testing.T) {
		env := testutil.NewEnv(t)
		attempts := 0

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			attempts++
			return errs.ErrInsufficientBalance
		})
		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
		assert.Equal(t, 1, attempts)
	})

	t.Run("Panics become internal errors and release the store", func(t *testing.T) {
		env := testutil.NewEnv(t)
		env.CreateUser(t, 1, 10)

		err := env.Runner.Run(ctx, func(ctx context.Context) error {
			if _, err := env.Ledger.Credit(ctx, 1, 10, nil); err != nil {
				return err
			}
			panic("unexpected")
		})
		assert.ErrorIs(t, err, errs.ErrInternalServer)

		// a leaked writer slot would make this time out
		env.Fund(t, 1, 5)
		assert.Equal(t, int64(5), env.Balance(t, 1).Current())
	})
}

func TestRunner_LockTimeout(t *testing.T) {
	env := testutil.NewEnv(t)
	env.CreateUser(t, 1, 10)

	cfg := txn.DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRetries = 1
	short := txn.NewRunner(env.Store, env.Clock, env.Logger, cfg)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- env.Runner.Run(context.Background(), func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := short.Run(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, errs.ErrUserLocked)

	close(release)
	require.NoError(t, <-done)
}
