package error

import (
	"errors"
	"fmt"
	"time"
)

// Kind groups domain errors into the categories the API layer maps to client-visible responses
type Kind string

const (
	KindValidation      Kind = "validation"
	KindStateConflict   Kind = "state_conflict"
	KindPolicyViolation Kind = "policy_violation"
	KindNotFound        Kind = "not_found"
	KindAccountBanned   Kind = "account_banned"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal"
)

// Error codes for standardized API responses
const (
	// 40xx - Validation errors
	CodeInvalidRequest          = 4000
	CodeInvalidAmount           = 4002
	CodeInvalidUserID           = 4003
	CodeInvalidEarnType         = 4004
	CodeMissingIdempotencyToken = 4005
	CodeInvalidQuizScore        = 4006
	CodeEmailRequired           = 4007
	CodeInvalidGiveawayAction   = 4008
	CodeInvalidEngagementType   = 4009
	CodeAmountOverflow          = 4010

	// 41xx - State conflicts
	CodeAlreadyCompleted        = 4100
	CodeAlreadyClaimed          = 4101
	CodeDuplicateSubmission     = 4102
	CodeDuplicateUser           = 4103
	CodeInvalidStatusTransition = 4104

	// 42xx - Policy violations
	CodeInsufficientBalance   = 4200
	CodeDailyCapExceeded      = 4201
	CodeCooldownActive        = 4202
	CodeOwnershipLimitReached = 4203
	CodeQuizNotPassed         = 4204
	CodeBonusLimitReached     = 4205
	CodeFreeEntryRequired     = 4206
	CodeItemAlreadyActive     = 4207
	CodeGiveawayClosed        = 4208
	CodeDeviceBlocked         = 4209

	// 43xx - Account state
	CodeAccountBanned = 4300

	// 44xx - Not found
	CodeUserNotFound       = 4400
	CodeItemNotFound       = 4401
	CodeGiveawayNotFound   = 4402
	CodeRedemptionNotFound = 4403
	CodeNotFound           = 4404

	// 45xx - Caller identity
	CodeUnauthenticated = 4500
	CodeForbidden       = 4501

	// 5xxx - Server errors
	CodeInternalServer      = 5000
	CodeUserLocked          = 5030
	CodeDatabaseConnection  = 5031
	CodeConstraintViolation = 5001
)

// Validation errors: malformed input, rejected before any transaction opens
var (
	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned when a ledger amount is zero or negative
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAmountOverflow is returned when an amount would overflow the balance counters
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrInvalidEarnType is returned for an unknown earn event type
	ErrInvalidEarnType = errors.New("invalid earn type")

	// ErrMissingIdempotencyToken is returned when an ad completion carries no token
	ErrMissingIdempotencyToken = errors.New("idempotency token is required")

	// ErrInvalidQuizScore is returned when a quiz score is outside 0..100
	ErrInvalidQuizScore = errors.New("quiz score must be between 0 and 100")

	// ErrEmailRequired is returned when a gift card is redeemed without a valid delivery email
	ErrEmailRequired = errors.New("a valid delivery email is required")

	// ErrInvalidGiveawayAction is returned for an unknown giveaway action
	ErrInvalidGiveawayAction = errors.New("invalid giveaway action")

	// ErrInvalidEngagementType is returned when a bonus entry names no engagement
	ErrInvalidEngagementType = errors.New("invalid engagement type")
)

// State conflicts: the requested action already happened
var (
	ErrAlreadyCompleted        = errors.New("action already completed")
	ErrAlreadyClaimed          = errors.New("entry already claimed")
	ErrDuplicateSubmission     = errors.New("duplicate submission")
	ErrDuplicateUser           = errors.New("user already exists")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Policy violations: the action is understood but currently disallowed
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrDailyCapExceeded      = errors.New("daily credit cap exceeded")
	ErrCooldownActive        = errors.New("cooldown active")
	ErrOwnershipLimitReached = errors.New("ownership limit reached")
	ErrQuizNotPassed         = errors.New("quiz not passed")
	ErrBonusLimitReached     = errors.New("bonus entry limit reached")
	ErrFreeEntryRequired     = errors.New("free entry must be claimed first")
	ErrItemAlreadyActive     = errors.New("item is already active")
	ErrGiveawayClosed        = errors.New("giveaway is not open")
	ErrDeviceBlocked         = errors.New("device is blocked")
)

// ErrAccountBanned is returned for every operation attempted by a banned user
var ErrAccountBanned = errors.New("account banned")

// Caller identity errors, raised by the API layer before any use case runs
var (
	ErrUnauthenticated = errors.New("caller identity missing or malformed")
	ErrForbidden       = errors.New("admin credentials required")
)

// Not found errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrGiveawayNotFound   = errors.New("giveaway not found")
	ErrRedemptionNotFound = errors.New("redemption not found")
	ErrNotFound           = errors.New("resource not found")
)

// Infrastructure errors
var (
	// ErrUserLocked is returned when the user's rows are locked by a concurrent operation past the lock timeout
	ErrUserLocked = errors.New("user is locked by another operation")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

type classification struct {
	kind Kind
	code int
}

// catalog is ordered: wrapped errors are matched against the first sentinel they satisfy
var catalog = []struct {
	err error
	classification
}{
	{ErrAccountBanned, classification{KindAccountBanned, CodeAccountBanned}},

	{ErrInvalidRequest, classification{KindValidation, CodeInvalidRequest}},
	{ErrInvalidAmount, classification{KindValidation, CodeInvalidAmount}},
	{ErrAmountOverflow, classification{KindValidation, CodeAmountOverflow}},
	{ErrInvalidUserID, classification{KindValidation, CodeInvalidUserID}},
	{ErrInvalidEarnType, classification{KindValidation, CodeInvalidEarnType}},
	{ErrMissingIdempotencyToken, classification{KindValidation, CodeMissingIdempotencyToken}},
	{ErrInvalidQuizScore, classification{KindValidation, CodeInvalidQuizScore}},
	{ErrEmailRequired, classification{KindValidation, CodeEmailRequired}},
	{ErrInvalidGiveawayAction, classification{KindValidation, CodeInvalidGiveawayAction}},
	{ErrInvalidEngagementType, classification{KindValidation, CodeInvalidEngagementType}},

	{ErrAlreadyCompleted, classification{KindStateConflict, CodeAlreadyCompleted}},
	{ErrAlreadyClaimed, classification{KindStateConflict, CodeAlreadyClaimed}},
	{ErrDuplicateSubmission, classification{KindStateConflict, CodeDuplicateSubmission}},
	{ErrDuplicateUser, classification{KindStateConflict, CodeDuplicateUser}},
	{ErrInvalidStatusTransition, classification{KindStateConflict, CodeInvalidStatusTransition}},

	{ErrInsufficientBalance, classification{KindPolicyViolation, CodeInsufficientBalance}},
	{ErrDailyCapExceeded, classification{KindPolicyViolation, CodeDailyCapExceeded}},
	{ErrCooldownActive, classification{KindPolicyViolation, CodeCooldownActive}},
	{ErrOwnershipLimitReached, classification{KindPolicyViolation, CodeOwnershipLimitReached}},
	{ErrQuizNotPassed, classification{KindPolicyViolation, CodeQuizNotPassed}},
	{ErrBonusLimitReached, classification{KindPolicyViolation, CodeBonusLimitReached}},
	{ErrFreeEntryRequired, classification{KindPolicyViolation, CodeFreeEntryRequired}},
	{ErrItemAlreadyActive, classification{KindPolicyViolation, CodeItemAlreadyActive}},
	{ErrGiveawayClosed, classification{KindPolicyViolation, CodeGiveawayClosed}},
	{ErrDeviceBlocked, classification{KindPolicyViolation, CodeDeviceBlocked}},

	{ErrUnauthenticated, classification{KindUnauthenticated, CodeUnauthenticated}},
	{ErrForbidden, classification{KindForbidden, CodeForbidden}},

	{ErrUserNotFound, classification{KindNotFound, CodeUserNotFound}},
	{ErrItemNotFound, classification{KindNotFound, CodeItemNotFound}},
	{ErrGiveawayNotFound, classification{KindNotFound, CodeGiveawayNotFound}},
	{ErrRedemptionNotFound, classification{KindNotFound, CodeRedemptionNotFound}},
	{ErrNotFound, classification{KindNotFound, CodeNotFound}},

	{ErrUserLocked, classification{KindUnavailable, CodeUserLocked}},
	{ErrDatabaseConnection, classification{KindUnavailable, CodeDatabaseConnection}},
	{ErrConstraintViolation, classification{KindInternal, CodeConstraintViolation}},
}

func classify(err error) classification {
	if err == nil {
		return classification{}
	}
	for _, entry := range catalog {
		if errors.Is(err, entry.err) {
			return entry.classification
		}
	}
	return classification{KindInternal, CodeInternalServer}
}

// KindOf returns the category of a domain error; unknown errors are internal
func KindOf(err error) Kind {
	return classify(err).kind
}

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	return classify(err).code
}

// IsRetryable reports whether the operation may succeed if simply retried
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUserLocked)
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	UserID    uint64
	Required  int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for user %d: required %d, available %d",
		e.UserID, e.Required, e.Available)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_balance",
		"user_id":    e.UserID,
		"required":   e.Required,
		"available":  e.Available,
		"error_code": CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(userID uint64, required, available int64) error {
	return &InsufficientBalanceError{
		UserID:    userID,
		Required:  required,
		Available: available,
	}
}

// DailyCapError describes a non-ad earn rejected by the daily cap
type DailyCapError struct {
	UserID      uint64
	Cap         int64
	EarnedToday int64
	Requested   int64
}

func (e *DailyCapError) Error() string {
	return fmt.Sprintf("daily credit cap exceeded for user %d: cap %d, earned today %d, requested %d",
		e.UserID, e.Cap, e.EarnedToday, e.Requested)
}

// Is checks if the target error is an ErrDailyCapExceeded
func (e *DailyCapError) Is(target error) bool {
	return target == ErrDailyCapExceeded
}

// Remaining returns how many non-ad credits the user can still earn today
func (e *DailyCapError) Remaining() int64 {
	if e.EarnedToday >= e.Cap {
		return 0
	}
	return e.Cap - e.EarnedToday
}

// LogFields returns a map of fields for structured logging
func (e *DailyCapError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "daily_cap_exceeded",
		"user_id":      e.UserID,
		"cap":          e.Cap,
		"earned_today": e.EarnedToday,
		"requested":    e.Requested,
		"error_code":   CodeDailyCapExceeded,
	}
}

// NewDailyCapError creates a new daily cap error
func NewDailyCapError(userID uint64, cap, earnedToday, requested int64) error {
	return &DailyCapError{UserID: userID, Cap: cap, EarnedToday: earnedToday, Requested: requested}
}

// CooldownError carries the moment the action becomes available again
type CooldownError struct {
	UserID      uint64
	Action      string
	AvailableAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active for user %d on %s until %s",
		e.UserID, e.Action, e.AvailableAt.UTC().Format(time.RFC3339))
}

// Is checks if the target error is an ErrCooldownActive
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// LogFields returns a map of fields for structured logging
func (e *CooldownError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "cooldown_active",
		"user_id":      e.UserID,
		"action":       e.Action,
		"available_at": e.AvailableAt,
		"error_code":   CodeCooldownActive,
	}
}

// NewCooldownError creates a new cooldown error
func NewCooldownError(userID uint64, action string, availableAt time.Time) error {
	return &CooldownError{UserID: userID, Action: action, AvailableAt: availableAt}
}

// DuplicateSubmissionError provides detailed information about a replayed idempotency token
type DuplicateSubmissionError struct {
	UserID uint64
	Token  string
}

// Error implements the error interface
func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("duplicate submission detected: token=%s for user %d", e.Token, e.UserID)
}

// Is checks if the target error is an ErrDuplicateSubmission
func (e *DuplicateSubmissionError) Is(target error) bool {
	return target == ErrDuplicateSubmission
}

// LogFields returns a map of fields for structured logging
func (e *DuplicateSubmissionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "duplicate_submission",
		"user_id":    e.UserID,
		"token":      e.Token,
		"error_code": CodeDuplicateSubmission,
	}
}

// NewDuplicateSubmissionError creates a new duplicate submission error
func NewDuplicateSubmissionError(userID uint64, token string) error {
	return &DuplicateSubmissionError{UserID: userID, Token: token}
}

// AccountBannedError carries the ban reason recorded by an admin
type AccountBannedError struct {
	UserID uint64
	Reason string
}

func (e *AccountBannedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("account %d is banned", e.UserID)
	}
	return fmt.Sprintf("account %d is banned: %s", e.UserID, e.Reason)
}

// Is checks if the target error is an ErrAccountBanned
func (e *AccountBannedError) Is(target error) bool {
	return target == ErrAccountBanned
}

// LogFields returns a map of fields for structured logging
func (e *AccountBannedError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "account_banned",
		"user_id":    e.UserID,
		"reason":     e.Reason,
		"error_code": CodeAccountBanned,
	}
}

// NewAccountBannedError creates a new account banned error
func NewAccountBannedError(userID uint64, reason string) error {
	return &AccountBannedError{UserID: userID, Reason: reason}
}

// LogFields extracts structured fields from any error, using the typed error's own fields when present
func LogFields(err error) map[string]any {
	var withFields interface{ LogFields() map[string]any }
	if errors.As(err, &withFields) {
		return withFields.LogFields()
	}
	return map[string]any{
		"error":      err.Error(),
		"error_kind": string(KindOf(err)),
		"error_code": ErrorCode(err),
	}
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsUserLockedError checks if the error is related to a locked user
func IsUserLockedError(err error) bool {
	return errors.Is(err, ErrUserLocked)
}
