package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// EarnType identifies the activity that produced credits
type EarnType string

const (
	EarnTypeCheckin EarnType = "checkin"
	EarnTypeAdView  EarnType = "ad_view"
	EarnTypeLesson  EarnType = "lesson"
)

// ParseEarnType converts a raw string into an EarnType
func ParseEarnType(s string) (EarnType, error) {
	switch EarnType(s) {
	case EarnTypeCheckin, EarnTypeAdView, EarnTypeLesson:
		return EarnType(s), nil
	default:
		return "", errs.ErrInvalidEarnType
	}
}

// CountsTowardDailyCap reports whether events of this type are limited by the daily non-ad cap
func (t EarnType) CountsTowardDailyCap() bool {
	return t != EarnTypeAdView
}

// CheckinDetails is recorded on check-in events
type CheckinDetails struct {
	StreakDay     int  `json:"streakDay"`
	SaverConsumed bool `json:"saverConsumed"`
}

// AdDetails is recorded on ad-view events
type AdDetails struct {
	AdUnitID string `json:"adUnitId,omitempty"`
	Network  string `json:"network,omitempty"`
}

// LessonDetails is recorded on lesson completion events
type LessonDetails struct {
	ModuleID  string `json:"moduleId"`
	QuizScore int    `json:"quizScore"`
}

// EarnMetadata is a tagged variant: exactly one member is set, matching the event type
type EarnMetadata struct {
	Checkin *CheckinDetails `json:"checkin,omitempty"`
	Ad      *AdDetails      `json:"ad,omitempty"`
	Lesson  *LessonDetails  `json:"lesson,omitempty"`
}

// EarnEvent is an immutable record of an accepted earn action
type EarnEvent struct {
	ID               uint64
	UserID           uint64
	Type             EarnType
	Amount           int64
	IdempotencyToken string // set for ad views
	ReferenceID      string // lesson module id
	DeviceID         string
	Metadata         EarnMetadata
	CreatedAt        time.Time
}

// DailyEarnings aggregates the events recorded for a user within one UTC day
type DailyEarnings struct {
	NonAdTotal   int64
	AdTotal      int64
	AdCount      int
	CheckinCount int
	LessonCount  int
}

// Add folds a single event into the aggregate
func (d *DailyEarnings) Add(eventType EarnType, amount int64) {
	switch eventType {
	case EarnTypeAdView:
		d.AdTotal += amount
		d.AdCount++
		return
	case EarnTypeCheckin:
		d.CheckinCount++
	case EarnTypeLesson:
		d.LessonCount++
	}
	d.NonAdTotal += amount
}

// Total returns all credits earned in the window
func (d DailyEarnings) Total() int64 {
	return d.NonAdTotal + d.AdTotal
}
