package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// Giveaway is a time-boxed raffle users collect entries for
type Giveaway struct {
	ID                    uint64
	Title                 string
	BonusEntriesAvailable int
	StartsAt              time.Time
	EndsAt                time.Time
	Active                bool
}

// OpenAt reports whether entries are accepted at now
func (g *Giveaway) OpenAt(now time.Time) bool {
	return g.Active && !now.Before(g.StartsAt) && now.Before(g.EndsAt)
}

// EntryType distinguishes how an entry was obtained
type EntryType string

const (
	EntryTypeFree  EntryType = "free"
	EntryTypeBonus EntryType = "bonus"
	EntryTypePaid  EntryType = "paid"
)

// GiveawayAction is the operation requested on a giveaway
type GiveawayAction string

const (
	ActionClaimFree GiveawayAction = "claim_free"
	ActionBuy       GiveawayAction = "buy"
	ActionBonus     GiveawayAction = "bonus"
)

// ParseGiveawayAction converts a raw string into a GiveawayAction
func ParseGiveawayAction(s string) (GiveawayAction, error) {
	switch GiveawayAction(s) {
	case ActionClaimFree, ActionBuy, ActionBonus:
		return GiveawayAction(s), nil
	default:
		return "", errs.ErrInvalidGiveawayAction
	}
}

// GiveawayEntry is one row per user, giveaway and entry type
type GiveawayEntry struct {
	ID           uint64
	UserID       uint64
	GiveawayID   uint64
	EntryType    EntryType
	EntriesCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time // for bonus rows this is the last bonus acquisition
}

// EntrySummary aggregates a user's entries in one giveaway
type EntrySummary struct {
	GiveawayID  uint64     `json:"giveawayId"`
	Free        int        `json:"free"`
	Bonus       int        `json:"bonus"`
	Paid        int        `json:"paid"`
	Total       int        `json:"total"`
	NextBonusAt *time.Time `json:"nextBonusAt,omitempty"`
}

// SummarizeEntries folds entry rows into a summary. NextBonusAt is set while the cooldown is running.
func SummarizeEntries(giveawayID uint64, entries []*GiveawayEntry, cooldown time.Duration, now time.Time) EntrySummary {
	sum := EntrySummary{GiveawayID: giveawayID}
	for _, e := range entries {
		switch e.EntryType {
		case EntryTypeFree:
			sum.Free += e.EntriesCount
		case EntryTypeBonus:
			sum.Bonus += e.EntriesCount
			if e.EntriesCount > 0 {
				next := e.UpdatedAt.Add(cooldown)
				if now.Before(next) {
					sum.NextBonusAt = &next
				}
			}
		case EntryTypePaid:
			sum.Paid += e.EntriesCount
		}
	}
	sum.Total = sum.Free + sum.Bonus + sum.Paid
	return sum
}
