package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Economy     EconomyConfig     `mapstructure:"economy"`
	Seed        SeedConfig        `mapstructure:"seed"`
	Admin       AdminConfig       `mapstructure:"admin"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`
	LockTimeout     time.Duration `mapstructure:"lockTimeout"`
	SlowThreshold   time.Duration `mapstructure:"slowThreshold"`
	LogLevel        string        `mapstructure:"logLevel"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
}

// RedisConfig configures the completion gate; disabled means no fast path
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"keyPrefix"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"` // json or console
	Output      []string `mapstructure:"output"`
	ServiceName string   `mapstructure:"serviceName"`
}

// TransactionConfig contains transaction runner settings
type TransactionConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetries    int           `mapstructure:"maxRetries"`
	RetryInterval time.Duration `mapstructure:"retryInterval"`
	MaxInterval   time.Duration `mapstructure:"maxInterval"`
	JitterFactor  float64       `mapstructure:"jitterFactor"`
}

// RunnerConfig converts the section into the runner's configuration
func (c TransactionConfig) RunnerConfig() txn.Config {
	return txn.Config{
		Timeout:       c.Timeout,
		MaxRetries:    c.MaxRetries,
		RetryInterval: c.RetryInterval,
		MaxInterval:   c.MaxInterval,
		JitterFactor:  c.JitterFactor,
	}
}

// EconomyConfig holds reward amounts, caps, costs and thresholds
type EconomyConfig struct {
	CheckinReward       int64         `mapstructure:"checkinReward"`
	AdReward            int64         `mapstructure:"adReward"`
	LessonReward        int64         `mapstructure:"lessonReward"`
	DailyCreditCap      int64         `mapstructure:"dailyCreditCap"`
	QuizPassScore       int           `mapstructure:"quizPassScore"`
	GiveawayEntryCost   int64         `mapstructure:"giveawayEntryCost"`
	BonusCooldown       time.Duration `mapstructure:"bonusCooldown"`
	HighRiskDeviceScore int           `mapstructure:"highRiskDeviceScore"`
}

// Policy converts the section into the policy value injected into the services
func (c EconomyConfig) Policy() entity.EconomyPolicy {
	return entity.EconomyPolicy{
		CheckinReward:       c.CheckinReward,
		AdReward:            c.AdReward,
		LessonReward:        c.LessonReward,
		DailyCreditCap:      c.DailyCreditCap,
		QuizPassScore:       c.QuizPassScore,
		GiveawayEntryCost:   c.GiveawayEntryCost,
		BonusCooldown:       c.BonusCooldown,
		HighRiskDeviceScore: c.HighRiskDeviceScore,
	}
}

// SeedConfig controls the reference data installed at startup
type SeedConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	GiveawayBonusEntries int           `mapstructure:"giveawayBonusEntries"`
	GiveawayDuration     time.Duration `mapstructure:"giveawayDuration"`
	DemoUserIDs          []uint64      `mapstructure:"demoUserIds"`
}

// AdminConfig guards the admin routes
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// CORSConfig lists the origins allowed to call the API from a browser
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// Validate checks the settings the process cannot start without
func (c *Config) Validate() error {
	var problems []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		problems = append(problems, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, errors.New("redis.addr is required when redis is enabled"))
	}
	if c.Transaction.Timeout <= 0 {
		problems = append(problems, errors.New("transaction.timeout must be positive"))
	}
	if c.Transaction.MaxRetries < 0 {
		problems = append(problems, errors.New("transaction.maxRetries cannot be negative"))
	}

	e := c.Economy
	if e.CheckinReward <= 0 || e.AdReward <= 0 || e.LessonReward <= 0 {
		problems = append(problems, errors.New("economy rewards must be positive"))
	}
	if e.DailyCreditCap <= 0 {
		problems = append(problems, errors.New("economy.dailyCreditCap must be positive"))
	}
	if e.GiveawayEntryCost <= 0 {
		problems = append(problems, errors.New("economy.giveawayEntryCost must be positive"))
	}
	if e.QuizPassScore < 0 || e.QuizPassScore > 100 {
		problems = append(problems, errors.New("economy.quizPassScore must be within 0-100"))
	}

	return errors.Join(problems...)
}
