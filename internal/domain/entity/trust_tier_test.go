package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveTier(t *testing.T) {
	testCases := []struct {
		age            int
		name           string
		multiplier     string
		maxAds         int
		reviewRequired bool
		dailyCap       int64
	}{
		{0, "new", "0.5", 2, true, 50},
		{2, "new", "0.5", 2, true, 50},
		{3, "probation", "0.75", 3, true, 75},
		{6, "probation", "0.75", 3, true, 75},
		{7, "standard", "1", 5, false, 100},
		{29, "standard", "1", 5, false, 100},
		{30, "trusted", "1.2", 7, false, 120},
		{400, "trusted", "1.2", 7, false, 120},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tier := ResolveTier(tc.age)
			assert.Equal(t, tc.name, tier.Name)
			assert.Equal(t, tc.multiplier, tier.CapMultiplier.String())
			assert.Equal(t, tc.maxAds, tier.MaxAdsPerDay)
			assert.Equal(t, tc.reviewRequired, tier.ReviewRequired)
			assert.Equal(t, tc.dailyCap, tier.DailyCap(100))
		})
	}
}

func TestDailyCapRoundsDown(t *testing.T) {
	assert.Equal(t, int64(37), ResolveTier(1).DailyCap(75))   // 37.5
	assert.Equal(t, int64(7), ResolveTier(4).DailyCap(10))    // 7.5
	assert.Equal(t, int64(118), ResolveTier(90).DailyCap(99)) // 118.8
}

func TestAccountAgeDays(t *testing.T) {
	created := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	u := &User{ID: 1, CreatedAt: created}

	assert.Equal(t, 0, u.AccountAgeDays(created.Add(23*time.Hour)))
	assert.Equal(t, 1, u.AccountAgeDays(created.Add(24*time.Hour)))
	assert.Equal(t, 6, u.AccountAgeDays(created.Add(7*24*time.Hour-time.Second)))
	assert.Equal(t, 0, u.AccountAgeDays(created.Add(-time.Hour)))
}
