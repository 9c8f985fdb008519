package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 9, 30, 0, 0, time.UTC)
}

func streakAt(current, longest, savers int, last time.Time) *Streak {
	lastDay := UTCDay(last)
	return &Streak{
		UserID:           1,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastCheckinDate:  &lastDay,
		StreakSaverCount: savers,
	}
}

func TestStreakCheckIn(t *testing.T) {
	t.Run("First check-in starts at one", func(t *testing.T) {
		s := NewStreak(1, day(1))
		tr, err := s.CheckIn(day(1))

		require.NoError(t, err)
		assert.Equal(t, 1, s.CurrentStreak)
		assert.Equal(t, 1, s.LongestStreak)
		assert.Equal(t, 1, tr.Current)
		assert.Equal(t, UTCDay(day(1)), *s.LastCheckinDate)
	})

	t.Run("Consecutive day increments", func(t *testing.T) {
		s := streakAt(3, 3, 0, day(9))
		_, err := s.CheckIn(day(10))

		require.NoError(t, err)
		assert.Equal(t, 4, s.CurrentStreak)
		assert.Equal(t, 4, s.LongestStreak)
	})

	t.Run("Same day is rejected without changes", func(t *testing.T) {
		s := streakAt(3, 5, 1, day(10))
		_, err := s.CheckIn(day(10).Add(10 * time.Hour))

		assert.ErrorIs(t, err, errs.ErrAlreadyCompleted)
		assert.Equal(t, 3, s.CurrentStreak)
		assert.Equal(t, 1, s.StreakSaverCount)
	})

	t.Run("Gap with a saver continues the streak", func(t *testing.T) {
		s := streakAt(5, 5, 1, day(8))
		tr, err := s.CheckIn(day(10))

		require.NoError(t, err)
		assert.Equal(t, 6, s.CurrentStreak)
		assert.Equal(t, 0, s.StreakSaverCount)
		assert.Equal(t, 6, s.LongestStreak)
		assert.True(t, tr.SaverConsumed)
		assert.False(t, tr.Reset)
	})

	t.Run("Gap without a saver resets to one", func(t *testing.T) {
		s := streakAt(5, 5, 0, day(8))
		tr, err := s.CheckIn(day(10))

		require.NoError(t, err)
		assert.Equal(t, 1, s.CurrentStreak)
		assert.Equal(t, 5, s.LongestStreak)
		assert.True(t, tr.Reset)
	})

	t.Run("One saver bridges a long gap", func(t *testing.T) {
		s := streakAt(2, 9, 2, day(1))
		_, err := s.CheckIn(day(20))

		require.NoError(t, err)
		assert.Equal(t, 3, s.CurrentStreak)
		assert.Equal(t, 1, s.StreakSaverCount)
		assert.Equal(t, 9, s.LongestStreak)
	})

	t.Run("Day boundary is UTC midnight", func(t *testing.T) {
		late := time.Date(2026, time.March, 9, 23, 59, 0, 0, time.UTC)
		s := streakAt(1, 1, 0, late)
		_, err := s.CheckIn(late.Add(2 * time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 2, s.CurrentStreak)
	})

	t.Run("Non-UTC input is normalized", func(t *testing.T) {
		zone := time.FixedZone("UTC+3:30", 3*3600+1800)
		// 02:00 local on the 11th is 22:30 UTC on the 10th
		s := streakAt(1, 1, 0, day(10))
		_, err := s.CheckIn(time.Date(2026, time.March, 11, 2, 0, 0, 0, zone))

		assert.ErrorIs(t, err, errs.ErrAlreadyCompleted)
	})
}

func TestStreakAddSavers(t *testing.T) {
	s := NewStreak(1, day(1))
	s.AddSavers(2, day(1))
	s.AddSavers(0, day(1))
	s.AddSavers(-1, day(1))
	assert.Equal(t, 2, s.StreakSaverCount)
}
