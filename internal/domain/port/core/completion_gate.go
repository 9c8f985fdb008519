package core

import (
	"context"
	"time"
)

// CompletionGate is an advisory fast-path for "already done" checks such as
// today's check-in or a running bonus cooldown. The database stays authoritative:
// a miss or an error from the gate must never turn into a rejection.
type CompletionGate interface {
	// DoneUntil returns the expiry recorded for key, ok is false when key is absent or expired
	DoneUntil(ctx context.Context, key string) (until time.Time, ok bool, err error)
	// MarkDone records key until the given moment
	MarkDone(ctx context.Context, key string, until time.Time) error
}
