package database

import (
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/config"
)

// FromAppConfig builds the connection settings from the application config.
// Zero values keep the DefaultConfig value.
func FromAppConfig(conf config.DatabaseConfig) *Config {
	c := DefaultConfig()

	if conf.Host != "" {
		c.Host = conf.Host
	}
	if conf.Port != 0 {
		c.Port = conf.Port
	}
	if conf.Username != "" {
		c.Username = conf.Username
	}
	if conf.Password != "" {
		c.Password = conf.Password
	}
	if conf.Database != "" {
		c.Database = conf.Database
	}
	if conf.SSLMode != "" {
		c.SSLMode = conf.SSLMode
	}
	if conf.MaxOpenConns > 0 {
		c.MaxOpenConns = conf.MaxOpenConns
	}
	if conf.MaxIdleConns > 0 {
		c.MaxIdleConns = conf.MaxIdleConns
	}
	if conf.ConnMaxLifetime > 0 {
		c.ConnMaxLifetime = conf.ConnMaxLifetime
	}
	if conf.ConnMaxIdleTime > 0 {
		c.ConnMaxIdleTime = conf.ConnMaxIdleTime
	}
	if conf.QueryTimeout > 0 {
		c.QueryTimeout = conf.QueryTimeout
	}
	if conf.LockTimeout > 0 {
		c.LockTimeout = conf.LockTimeout
	}
	if conf.SlowThreshold > 0 {
		c.SlowThreshold = conf.SlowThreshold
	}
	if conf.LogLevel != "" {
		c.LogLevel = conf.LogLevel
	}
	if conf.RetryAttempts > 0 {
		c.RetryAttempts = conf.RetryAttempts
	}
	if conf.RetryDelay > 0 {
		c.RetryDelay = conf.RetryDelay
	}

	return c
}
