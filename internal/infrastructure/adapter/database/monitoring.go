package database

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
)

// TxStats counts ledger transactions since the process started.
// Hold time is measured from Begin to Commit/Rollback; every ledger
// transaction locks a balance row, so it approximates lock hold time.
type TxStats struct {
	Committed  uint64 `json:"committed"`
	RolledBack uint64 `json:"rolledBack"`
	SlowHolds  uint64 `json:"slowHolds"`
	MaxHoldMs  int64  `json:"maxHoldMs"`
}

// MetricsCollector times database work and reports what runs slow
type MetricsCollector struct {
	logger        coreport.Logger
	timeProvider  coreport.TimeProvider
	slowThreshold time.Duration

	committed  atomic.Uint64
	rolledBack atomic.Uint64
	slowHolds  atomic.Uint64

	mu      sync.Mutex
	maxHold time.Duration
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider, slowThreshold time.Duration) *MetricsCollector {
	return &MetricsCollector{
		logger:        logger,
		timeProvider:  timeProvider,
		slowThreshold: slowThreshold,
	}
}

// Measure runs fn and warns when it exceeds the slow threshold
func (c *MetricsCollector) Measure(ctx context.Context, operation string, fn func(ctx context.Context) error) (time.Duration, error) {
	start := c.timeProvider.Now()
	err := fn(ctx)
	took := c.timeProvider.Since(start).Std()

	if c.slowThreshold > 0 && took > c.slowThreshold {
		fields := map[string]any{
			"operation":   operation,
			"duration_ms": took.Milliseconds(),
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		c.logger.Warn("Slow database operation detected", fields)
	}
	return took, err
}

func (c *MetricsCollector) startTx() time.Time {
	return c.timeProvider.Now()
}

// finishTx records one finished transaction
func (c *MetricsCollector) finishTx(startedAt time.Time, committed bool) {
	held := c.timeProvider.Since(startedAt).Std()
	if committed {
		c.committed.Add(1)
	} else {
		c.rolledBack.Add(1)
	}

	c.mu.Lock()
	if held > c.maxHold {
		c.maxHold = held
	}
	c.mu.Unlock()

	if c.slowThreshold > 0 && held > c.slowThreshold {
		c.slowHolds.Add(1)
		c.logger.Warn("Ledger transaction held its locks for a long time", map[string]any{
			"held_ms":   held.Milliseconds(),
			"committed": committed,
		})
	}
}

// TxStats returns the transaction counters
func (c *MetricsCollector) TxStats() TxStats {
	c.mu.Lock()
	maxHold := c.maxHold
	c.mu.Unlock()

	return TxStats{
		Committed:  c.committed.Load(),
		RolledBack: c.rolledBack.Load(),
		SlowHolds:  c.slowHolds.Load(),
		MaxHoldMs:  maxHold.Milliseconds(),
	}
}
