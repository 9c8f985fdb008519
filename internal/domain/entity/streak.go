package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// UTCDay truncates t to midnight of its UTC calendar day
func UTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Streak tracks consecutive daily check-ins
type Streak struct {
	UserID           uint64
	CurrentStreak    int
	LongestStreak    int
	LastCheckinDate  *time.Time // UTC day of the last check-in, nil before the first one
	StreakSaverCount int
	UpdatedAt        time.Time
}

// NewStreak creates the initial NoStreak state
func NewStreak(userID uint64, now time.Time) *Streak {
	return &Streak{UserID: userID, UpdatedAt: now.UTC()}
}

// StreakTransition describes the outcome of a check-in
type StreakTransition struct {
	Previous      int
	Current       int
	Longest       int
	SaverConsumed bool
	Reset         bool
}

// CheckedInOn reports whether the last check-in falls on the UTC day of now
func (s *Streak) CheckedInOn(now time.Time) bool {
	return s.LastCheckinDate != nil && UTCDay(*s.LastCheckinDate).Equal(UTCDay(now))
}

// CheckIn advances the streak for the UTC day containing now.
// A missed stretch of any length is bridged by a single streak saver.
func (s *Streak) CheckIn(now time.Time) (StreakTransition, error) {
	today := UTCDay(now)
	tr := StreakTransition{Previous: s.CurrentStreak}

	switch {
	case s.LastCheckinDate == nil:
		s.CurrentStreak = 1
	default:
		gap := int(today.Sub(UTCDay(*s.LastCheckinDate)) / (24 * time.Hour))
		switch {
		case gap <= 0:
			return StreakTransition{}, errs.ErrAlreadyCompleted
		case gap == 1:
			s.CurrentStreak++
		case s.StreakSaverCount > 0:
			s.StreakSaverCount--
			s.CurrentStreak++
			tr.SaverConsumed = true
		default:
			s.CurrentStreak = 1
			tr.Reset = true
		}
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastCheckinDate = &today
	s.UpdatedAt = now.UTC()

	tr.Current = s.CurrentStreak
	tr.Longest = s.LongestStreak
	return tr, nil
}

// AddSavers grants streak savers bought from the store
func (s *Streak) AddSavers(n int, now time.Time) {
	if n <= 0 {
		return
	}
	s.StreakSaverCount += n
	s.UpdatedAt = now.UTC()
}

// Snapshot returns a read-only view of the streak
func (s *Streak) Snapshot() StreakSnapshot {
	snap := StreakSnapshot{
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		StreakSaverCount: s.StreakSaverCount,
	}
	if s.LastCheckinDate != nil {
		d := *s.LastCheckinDate
		snap.LastCheckinDate = &d
	}
	return snap
}

// StreakSnapshot is a read-only view of a streak
type StreakSnapshot struct {
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastCheckinDate  *time.Time `json:"lastCheckinDate,omitempty"`
	StreakSaverCount int        `json:"streakSaverCount"`
}
