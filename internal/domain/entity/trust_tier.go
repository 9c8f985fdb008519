package entity

import (
	"github.com/shopspring/decimal"
)

// TrustTier is the rate-limit profile selected by account age
type TrustTier struct {
	Name           string
	CapMultiplier  decimal.Decimal
	MaxAdsPerDay   int
	ReviewRequired bool
}

var (
	tierNew       = TrustTier{Name: "new", CapMultiplier: decimal.RequireFromString("0.5"), MaxAdsPerDay: 2, ReviewRequired: true}
	tierProbation = TrustTier{Name: "probation", CapMultiplier: decimal.RequireFromString("0.75"), MaxAdsPerDay: 3, ReviewRequired: true}
	tierStandard  = TrustTier{Name: "standard", CapMultiplier: decimal.NewFromInt(1), MaxAdsPerDay: 5, ReviewRequired: false}
	tierTrusted   = TrustTier{Name: "trusted", CapMultiplier: decimal.RequireFromString("1.2"), MaxAdsPerDay: 7, ReviewRequired: false}
)

// ResolveTier maps an account age in whole days to its trust tier
func ResolveTier(accountAgeDays int) TrustTier {
	switch {
	case accountAgeDays < 3:
		return tierNew
	case accountAgeDays < 7:
		return tierProbation
	case accountAgeDays < 30:
		return tierStandard
	default:
		return tierTrusted
	}
}

// DailyCap scales the base non-ad cap by the tier multiplier, rounding down
func (t TrustTier) DailyCap(base int64) int64 {
	return decimal.NewFromInt(base).Mul(t.CapMultiplier).Floor().IntPart()
}
