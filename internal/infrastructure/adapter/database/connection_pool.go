package database

import (
	"fmt"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// PoolMetrics is one sample of database/sql pool statistics
type PoolMetrics struct {
	OpenConnections    int           `json:"openConnections"`
	IdleConnections    int           `json:"idleConnections"`
	MaxOpenConnections int           `json:"maxOpenConnections"`
	InUse              int           `json:"inUse"`
	WaitCount          int64         `json:"waitCount"`
	WaitDuration       time.Duration `json:"waitDuration"`
	SampledAt          time.Time     `json:"sampledAt"`
}

// Stats is what the health endpoint reports for the postgres driver
type Stats struct {
	Pool         PoolMetrics `json:"pool"`
	Transactions TxStats     `json:"transactions"`
}

// poolSaturation is the in-use share of MaxOpenConnections that triggers a warning.
// Requests for the same user queue on the balance row lock while holding a
// connection, so a hot user shows up here first.
const poolSaturation = 0.8

// ConnectionPoolMonitor samples the pool periodically and warns when it runs hot
type ConnectionPoolMonitor struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider

	mu       sync.RWMutex
	last     PoolMetrics
	lastWait int64

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewConnectionPoolMonitor creates a new connection pool monitor
func NewConnectionPoolMonitor(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		stopChan:     make(chan struct{}),
	}
}

// Start takes a first sample and keeps sampling every interval until Stop
func (m *ConnectionPoolMonitor) Start(interval time.Duration) error {
	if err := m.sample(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.sample(); err != nil {
					m.logger.Error("Failed to sample connection pool", map[string]any{"error": err.Error()})
				}
			case <-m.stopChan:
				return
			}
		}
	}()
	return nil
}

// Stop stops the sampling; safe to call more than once
func (m *ConnectionPoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// Last returns the most recent sample
func (m *ConnectionPoolMonitor) Last() PoolMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

func (m *ConnectionPoolMonitor) sample() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	stats := sqlDB.Stats()

	m.mu.Lock()
	newWaits := stats.WaitCount - m.lastWait
	m.lastWait = stats.WaitCount
	m.last = PoolMetrics{
		OpenConnections:    stats.OpenConnections,
		IdleConnections:    stats.Idle,
		MaxOpenConnections: stats.MaxOpenConnections,
		InUse:              stats.InUse,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		SampledAt:          m.timeProvider.Now(),
	}
	m.mu.Unlock()

	if stats.MaxOpenConnections > 0 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*poolSaturation {
		m.logger.Warn("Database connection pool nearly exhausted", map[string]any{
			"in_use":    stats.InUse,
			"max_open":  stats.MaxOpenConnections,
			"new_waits": newWaits,
			"wait_time": stats.WaitDuration.String(),
		})
	}
	return nil
}
