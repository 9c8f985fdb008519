package entity

import "time"

// AccountView is the read model returned for a user's account
type AccountView struct {
	UserID    uint64          `json:"userId"`
	Email     string          `json:"email,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Banned    bool            `json:"banned"`
	BanReason string          `json:"banReason,omitempty"`
	Balance   BalanceSnapshot `json:"balance"`
	Streak    StreakSnapshot  `json:"streak"`
	Tier      TierView        `json:"tier"`
}

// TierView is the serializable form of a trust tier together with the caps it yields
type TierView struct {
	Name           string `json:"name"`
	CapMultiplier  string `json:"capMultiplier"`
	DailyCreditCap int64  `json:"dailyCreditCap"`
	MaxAdsPerDay   int    `json:"maxAdsPerDay"`
	ReviewRequired bool   `json:"reviewRequired"`
}

// NewTierView renders a tier against the base daily cap
func NewTierView(tier TrustTier, baseCap int64) TierView {
	return TierView{
		Name:           tier.Name,
		CapMultiplier:  tier.CapMultiplier.String(),
		DailyCreditCap: tier.DailyCap(baseCap),
		MaxAdsPerDay:   tier.MaxAdsPerDay,
		ReviewRequired: tier.ReviewRequired,
	}
}

// NewAccountView assembles the account read model
func NewAccountView(user *User, balance *Balance, streak *Streak, tier TierView) AccountView {
	return AccountView{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		Banned:    user.Banned,
		BanReason: user.BanReason,
		Balance:   balance.Snapshot(),
		Streak:    streak.Snapshot(),
		Tier:      tier,
	}
}
