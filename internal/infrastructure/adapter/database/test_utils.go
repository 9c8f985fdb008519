package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
)

// TestDBManager provides a migrated, empty PostgreSQL database to integration tests
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects to the database named by CL_TEST_DB_* and skips the test when
// CL_TEST_DB_HOST is unset
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv("CL_TEST_DB_HOST")
	if !ok || host == "" {
		t.Skip("CL_TEST_DB_HOST not set, skipping PostgreSQL integration test")
	}

	timeProvider := timeprovider.NewRealTimeProvider()
	config := &Config{
		Host:            host,
		Port:            getEnvIntOrDefault("CL_TEST_DB_PORT", 5432),
		Username:        getEnvOrDefault("CL_TEST_DB_USERNAME", "postgres"),
		Password:        getEnvOrDefault("CL_TEST_DB_PASSWORD", "postgres"),
		Database:        getEnvOrDefault("CL_TEST_DB_NAME", "credits_ledger_test"),
		SSLMode:         getEnvOrDefault("CL_TEST_DB_SSL_MODE", "disable"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LockTimeout:     200 * time.Millisecond,
		LogLevel:        "silent",
		SlowThreshold:   time.Second,
		RetryAttempts:   1,
		RetryDelay:      time.Second,
	}

	manager := NewManager(config, logger, timeProvider)
	if err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	m := &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
	t.Cleanup(func() { m.Close(t) })

	m.resetSchema(t)
	return m
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// resetSchema drops every table and migrates from scratch
func (m *TestDBManager) resetSchema(t *testing.T) {
	t.Helper()

	err := m.Manager.DB().Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error
	if err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}

	if err := m.Manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
