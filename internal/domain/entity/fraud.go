package entity

import "time"

// FlagType names the heuristic that raised a fraud flag
type FlagType string

const (
	FlagAdLimitExceeded FlagType = "ad_limit_exceeded"
	FlagReviewRequired  FlagType = "review_required"
	FlagHighRiskDevice  FlagType = "high_risk_device"
)

// Severity of a fraud flag
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FlagDetails carries the numbers that triggered a flag
type FlagDetails struct {
	EarnType     EarnType `json:"earnType,omitempty"`
	AdCount      int      `json:"adCount,omitempty"`
	MaxAdsPerDay int      `json:"maxAdsPerDay,omitempty"`
	Tier         string   `json:"tier,omitempty"`
	RiskScore    int      `json:"riskScore,omitempty"`
}

// FraudFlag is an append-only detection record
type FraudFlag struct {
	ID        uint64
	UserID    uint64
	DeviceID  string
	FlagType  FlagType
	Severity  Severity
	Reason    string
	Details   FlagDetails
	Resolved  bool
	CreatedAt time.Time
}

// Device is a fingerprinted client seen for a user
type Device struct {
	Fingerprint string
	UserID      uint64
	RiskScore   int // 0..100
	Blocked     bool
	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// DeviceSignal is the read-only risk input consumed by the earn path
type DeviceSignal struct {
	Fingerprint string
	RiskScore   int
	Blocked     bool
}
