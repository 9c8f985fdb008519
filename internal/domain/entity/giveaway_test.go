package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiveawayWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	g := &Giveaway{StartsAt: start, EndsAt: start.Add(48 * time.Hour), Active: true}

	assert.False(t, g.OpenAt(start.Add(-time.Second)))
	assert.True(t, g.OpenAt(start))
	assert.True(t, g.OpenAt(start.Add(47*time.Hour)))
	assert.False(t, g.OpenAt(start.Add(48*time.Hour)))

	g.Active = false
	assert.False(t, g.OpenAt(start.Add(time.Hour)))
}

func TestSummarizeEntries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []*GiveawayEntry{
		{EntryType: EntryTypeFree, EntriesCount: 1},
		{EntryType: EntryTypeBonus, EntriesCount: 2, UpdatedAt: now.Add(-2 * time.Hour)},
		{EntryType: EntryTypePaid, EntriesCount: 4},
	}

	sum := SummarizeEntries(9, entries, 12*time.Hour, now)
	assert.Equal(t, uint64(9), sum.GiveawayID)
	assert.Equal(t, 1, sum.Free)
	assert.Equal(t, 2, sum.Bonus)
	assert.Equal(t, 4, sum.Paid)
	assert.Equal(t, 7, sum.Total)
	require.NotNil(t, sum.NextBonusAt)
	assert.Equal(t, now.Add(10*time.Hour), *sum.NextBonusAt)

	later := SummarizeEntries(9, entries, 12*time.Hour, now.Add(10*time.Hour))
	assert.Nil(t, later.NextBonusAt)
}

func TestParseActions(t *testing.T) {
	for _, raw := range []string{"claim_free", "buy", "bonus"} {
		a, err := ParseGiveawayAction(raw)
		require.NoError(t, err)
		assert.Equal(t, GiveawayAction(raw), a)
	}
	_, err := ParseGiveawayAction("steal")
	assert.Error(t, err)

	_, err = ParseEarnType("mining")
	assert.Error(t, err)
	et, err := ParseEarnType("ad_view")
	require.NoError(t, err)
	assert.False(t, et.CountsTowardDailyCap())
}
