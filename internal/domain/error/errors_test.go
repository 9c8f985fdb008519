package error

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InvalidAmount", ErrInvalidAmount, CodeInvalidAmount},
		{"InvalidUserID", ErrInvalidUserID, CodeInvalidUserID},
		{"InsufficientBalance", ErrInsufficientBalance, CodeInsufficientBalance},
		{"DuplicateSubmission", ErrDuplicateSubmission, CodeDuplicateSubmission},
		{"UserNotFound", ErrUserNotFound, CodeUserNotFound},
		{"UserLocked", ErrUserLocked, CodeUserLocked},
		{"AccountBanned", ErrAccountBanned, CodeAccountBanned},
		{"UnknownError", errors.New("unknown error"), CodeInternalServer},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrInvalidUserID), CodeInvalidUserID},
		{"TypedCooldown", NewCooldownError(1, "bonus", time.Now()), CodeCooldownActive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	testCases := []struct {
		err  error
		kind Kind
	}{
		{ErrInvalidEarnType, KindValidation},
		{ErrMissingIdempotencyToken, KindValidation},
		{ErrAlreadyCompleted, KindStateConflict},
		{ErrAlreadyClaimed, KindStateConflict},
		{NewDuplicateSubmissionError(3, "tok"), KindStateConflict},
		{NewDailyCapError(3, 100, 95, 15), KindPolicyViolation},
		{ErrQuizNotPassed, KindPolicyViolation},
		{NewInsufficientBalanceError(3, 50, 10), KindPolicyViolation},
		{ErrItemNotFound, KindNotFound},
		{ErrGiveawayNotFound, KindNotFound},
		{NewAccountBannedError(3, "bot"), KindAccountBanned},
		{ErrUserLocked, KindUnavailable},
		{errors.New("boom"), KindInternal},
	}

	for _, tc := range testCases {
		if got := KindOf(tc.err); got != tc.kind {
			t.Errorf("KindOf(%v) = %s, want %s", tc.err, got, tc.kind)
		}
	}

	if KindOf(nil) != "" {
		t.Errorf("KindOf(nil) should be empty")
	}
}

func TestBannedIsClassifiedBeforeEverythingElse(t *testing.T) {
	err := fmt.Errorf("%w: %w", NewAccountBannedError(1, ""), ErrInvalidAmount)
	if KindOf(err) != KindAccountBanned {
		t.Errorf("KindOf = %s, want %s", KindOf(err), KindAccountBanned)
	}
}

func TestDailyCapError(t *testing.T) {
	err := NewDailyCapError(42, 100, 95, 15)

	if !errors.Is(err, ErrDailyCapExceeded) {
		t.Errorf("errors.Is(err, ErrDailyCapExceeded) = false, want true")
	}

	var capErr *DailyCapError
	if !errors.As(err, &capErr) {
		t.Fatalf("errors.As failed")
	}
	if capErr.Remaining() != 5 {
		t.Errorf("Remaining() = %d, want 5", capErr.Remaining())
	}

	expected := "daily credit cap exceeded for user 42: cap 100, earned today 95, requested 15"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
}

func TestLogFields(t *testing.T) {
	fields := LogFields(NewInsufficientBalanceError(7, 50, 20))
	if fields["error_type"] != "insufficient_balance" || fields["required"] != int64(50) {
		t.Errorf("unexpected fields: %v", fields)
	}

	plain := LogFields(fmt.Errorf("lookup: %w", ErrItemNotFound))
	if plain["error_kind"] != string(KindNotFound) || plain["error_code"] != CodeItemNotFound {
		t.Errorf("unexpected fields: %v", plain)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("tx: %w", ErrUserLocked)) {
		t.Errorf("wrapped ErrUserLocked should be retryable")
	}
	if IsRetryable(ErrInsufficientBalance) {
		t.Errorf("ErrInsufficientBalance should not be retryable")
	}
}
