package cache

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
)

// MemoryGate is a process-local completion gate whose expiry follows the injected clock
type MemoryGate struct {
	mu           sync.Mutex
	entries      map[string]time.Time
	timeProvider coreport.TimeProvider
}

// NewMemoryGate creates an empty in-process gate
func NewMemoryGate(timeProvider coreport.TimeProvider) *MemoryGate {
	return &MemoryGate{entries: make(map[string]time.Time), timeProvider: timeProvider}
}

func (g *MemoryGate) DoneUntil(_ context.Context, key string) (time.Time, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	until, ok := g.entries[key]
	if !ok {
		return time.Time{}, false, nil
	}
	if !g.timeProvider.Now().Before(until) {
		delete(g.entries, key)
		return time.Time{}, false, nil
	}
	return until, true, nil
}

func (g *MemoryGate) MarkDone(_ context.Context, key string, until time.Time) error {
	g.mu.Lock()
	g.entries[key] = until
	g.mu.Unlock()
	return nil
}

// NoopGate never reports anything as done; every decision falls through to the database
type NoopGate struct{}

func (NoopGate) DoneUntil(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func (NoopGate) MarkDone(context.Context, string, time.Time) error { return nil }
