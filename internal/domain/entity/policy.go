package entity

import "time"

// EconomyPolicy holds the tunable constants of the economy.
// It is built from configuration and injected into each service.
type EconomyPolicy struct {
	CheckinReward       int64
	AdReward            int64
	LessonReward        int64
	DailyCreditCap      int64
	QuizPassScore       int
	GiveawayEntryCost   int64
	BonusCooldown       time.Duration
	HighRiskDeviceScore int
}

// DefaultEconomyPolicy returns the production defaults
func DefaultEconomyPolicy() EconomyPolicy {
	return EconomyPolicy{
		CheckinReward:       5,
		AdReward:            10,
		LessonReward:        15,
		DailyCreditCap:      100,
		QuizPassScore:       70,
		GiveawayEntryCost:   50,
		BonusCooldown:       12 * time.Hour,
		HighRiskDeviceScore: 70,
	}
}

// RewardFor returns the base reward credited for an earn type
func (p EconomyPolicy) RewardFor(t EarnType) int64 {
	switch t {
	case EarnTypeCheckin:
		return p.CheckinReward
	case EarnTypeAdView:
		return p.AdReward
	case EarnTypeLesson:
		return p.LessonReward
	default:
		return 0
	}
}
