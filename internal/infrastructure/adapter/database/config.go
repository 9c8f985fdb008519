package database

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	validSSLModes  = []string{"disable", "require", "verify-ca", "verify-full", "prefer"}
	validLogLevels = []string{"silent", "debug", "info", "warn", "error"}
)

// Config holds the postgres connection and pool settings
type Config struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	LockTimeout     time.Duration // SET LOCAL lock_timeout for every transaction
	LogLevel        string
	SlowThreshold   time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
}

// DefaultConfig returns the pool defaults. Host, user and database have no
// default and must come from the application config.
func DefaultConfig() *Config {
	return &Config{
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    10 * time.Second,
		LockTimeout:     500 * time.Millisecond,
		LogLevel:        "warn",
		SlowThreshold:   200 * time.Millisecond,
		RetryAttempts:   3,
		RetryDelay:      2 * time.Second,
	}
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("database host is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port number: %d", c.Port))
	}
	if c.Username == "" {
		errs = append(errs, errors.New("database username is required"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database name is required"))
	}
	if !slices.Contains(validSSLModes, c.SSLMode) {
		errs = append(errs, fmt.Errorf("invalid SSL mode: %s", c.SSLMode))
	}
	if c.MaxOpenConns <= 0 || c.MaxIdleConns <= 0 {
		errs = append(errs, fmt.Errorf("pool sizes must be positive, got open=%d idle=%d", c.MaxOpenConns, c.MaxIdleConns))
	}
	if c.QueryTimeout <= 0 {
		errs = append(errs, errors.New("query timeout must be positive"))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, errors.New("lock timeout must be positive"))
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry attempts and delay must be non-negative"))
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.LogLevel))
	}
	return errors.Join(errs...)
}

// DSN returns the connection string; the session time zone is pinned to UTC
// because every day boundary in the ledger is a UTC day
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode,
	)
}
