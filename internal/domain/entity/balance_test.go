package entity

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
)

func assertInvariant(t *testing.T, b *Balance) {
	t.Helper()
	assert.Equal(t, b.LifetimeEarned()-b.LifetimeSpent(), b.Current())
	assert.GreaterOrEqual(t, b.Current(), int64(0))
}

func TestBalanceCreditDebit(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	t.Run("Credit then debit keeps the invariant", func(t *testing.T) {
		b := NewBalance(1, clock)
		require.NoError(t, b.Credit(30, clock))
		require.NoError(t, b.Debit(12, clock))

		assert.Equal(t, int64(18), b.Current())
		assert.Equal(t, int64(30), b.LifetimeEarned())
		assert.Equal(t, int64(12), b.LifetimeSpent())
		assertInvariant(t, b)
	})

	t.Run("Non-positive amounts are rejected", func(t *testing.T) {
		b := NewBalance(1, clock)
		for _, amount := range []int64{0, -5} {
			assert.ErrorIs(t, b.Credit(amount, clock), errs.ErrInvalidAmount)
			assert.ErrorIs(t, b.Debit(amount, clock), errs.ErrInvalidAmount)
		}
		assert.Equal(t, int64(0), b.Current())
	})

	t.Run("Overdraft leaves the balance unchanged", func(t *testing.T) {
		b := NewBalance(7, clock)
		require.NoError(t, b.Credit(10, clock))

		err := b.Debit(11, clock)
		require.Error(t, err)
		assert.True(t, errs.IsInsufficientBalanceError(err))

		var detail *errs.InsufficientBalanceError
		require.True(t, errors.As(err, &detail))
		assert.Equal(t, int64(11), detail.Required)
		assert.Equal(t, int64(10), detail.Available)

		assert.Equal(t, int64(10), b.Current())
		assert.Equal(t, int64(0), b.LifetimeSpent())
		assertInvariant(t, b)
	})

	t.Run("Overflow is rejected", func(t *testing.T) {
		b, err := RestoreBalance(1, math.MaxInt64-5, math.MaxInt64-5, 0, clock.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, b.Credit(10, clock), errs.ErrAmountOverflow)
	})

	t.Run("Random sequences never break the invariant", func(t *testing.T) {
		b := NewBalance(1, clock)
		ops := []int64{5, -3, 10, -20, 15, -15, 1, -1, 100, -99, -2}
		for _, op := range ops {
			if op > 0 {
				require.NoError(t, b.Credit(op, clock))
			} else {
				_ = b.Debit(-op, clock)
			}
			assertInvariant(t, b)
		}
	})
}

func TestRestoreBalance(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name                   string
		current, earned, spent int64
		wantErr                bool
	}{
		{"consistent", 40, 100, 60, false},
		{"empty", 0, 0, 0, false},
		{"current mismatch", 41, 100, 60, true},
		{"negative current", -10, 50, 60, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := RestoreBalance(9, tc.current, tc.earned, tc.spent, now)
			if tc.wantErr {
				assert.ErrorIs(t, err, errs.ErrConstraintViolation)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.current, b.Current())
		})
	}
}
