package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
}

// LoadConfig loads configs/<env>.yaml when present, then applies CL_* environment overrides
func LoadConfig() (*Config, error) {
	// a missing .env is normal outside development
	_ = loadDotEnvFile()

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found; existing variables are not overwritten
func loadDotEnvFile() error {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load %s: %w", path, err)
		}
		return nil
	}
	return errors.New("no .env file found in search paths")
}

// setDefaults registers every key, so AutomaticEnv can override any of them
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "15s")
	v.SetDefault("server.writeTimeout", "15s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.readHeaderTimeout", "10s")
	v.SetDefault("server.shutdownTimeout", "10s")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "credits_ledger")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connMaxIdleTime", "15m")
	v.SetDefault("database.queryTimeout", "10s")
	v.SetDefault("database.lockTimeout", "500ms")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", "2s")
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "credits")
	v.SetDefault("redis.dialTimeout", "2s")
	v.SetDefault("redis.readTimeout", "200ms")
	v.SetDefault("redis.writeTimeout", "200ms")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", []string{"stdout"})
	v.SetDefault("logger.serviceName", "credits-ledger")

	v.SetDefault("transaction.timeout", "800ms")
	v.SetDefault("transaction.maxRetries", 3)
	v.SetDefault("transaction.retryInterval", "20ms")
	v.SetDefault("transaction.maxInterval", "200ms")
	v.SetDefault("transaction.jitterFactor", 0.2)

	v.SetDefault("economy.checkinReward", 5)
	v.SetDefault("economy.adReward", 10)
	v.SetDefault("economy.lessonReward", 15)
	v.SetDefault("economy.dailyCreditCap", 100)
	v.SetDefault("economy.quizPassScore", 70)
	v.SetDefault("economy.giveawayEntryCost", 50)
	v.SetDefault("economy.bonusCooldown", "12h")
	v.SetDefault("economy.highRiskDeviceScore", 70)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.giveawayBonusEntries", 10)
	v.SetDefault("seed.giveawayDuration", "720h")
	v.SetDefault("seed.demoUserIds", []uint64{})

	v.SetDefault("admin.token", "")
	v.SetDefault("cors.allowedOrigins", []string{})
}

// getEnvironment determines the environment to use based on CL_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides maps the short, deployment-facing variable names onto config keys.
// AutomaticEnv already covers the long form, e.g. CL_DATABASE_HOST.
func processEnvOverrides(v *viper.Viper) {
	strOverrides := map[string]string{
		"CL_DB_DRIVER":       "database.driver",
		"CL_DB_HOST":         "database.host",
		"CL_DB_USERNAME":     "database.username",
		"CL_DB_PASSWORD":     "database.password",
		"CL_DB_NAME":         "database.database",
		"CL_DB_SSL_MODE":     "database.sslMode",
		"CL_SERVER_HOST":     "server.host",
		"CL_LOGGER_LEVEL":    "logger.level",
		"CL_REDIS_ADDR":      "redis.addr",
		"CL_REDIS_PASSWORD":  "redis.password",
		"CL_ADMIN_TOKEN":     "admin.token",
		"CL_DB_LOCK_TIMEOUT": "database.lockTimeout",
		"CL_TX_TIMEOUT":      "transaction.timeout",
	}
	for env, key := range strOverrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	intOverrides := map[string]string{
		"CL_DB_PORT":                 "database.port",
		"CL_DB_MAX_OPEN_CONNS":       "database.maxOpenConns",
		"CL_DB_MAX_IDLE_CONNS":       "database.maxIdleConns",
		"CL_SERVER_PORT":             "server.port",
		"CL_TRANSACTION_MAX_RETRIES": "transaction.maxRetries",
	}
	for env, key := range intOverrides {
		if value, ok := getEnvInt(env); ok {
			v.Set(key, value)
		}
	}

	if redisEnabled := os.Getenv("CL_REDIS_ENABLED"); redisEnabled != "" {
		if enabled, err := strconv.ParseBool(redisEnabled); err == nil {
			v.Set("redis.enabled", enabled)
		}
	}
	if origins := os.Getenv("CL_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("cors.allowedOrigins", strings.Split(origins, ","))
	}
}

func getEnvInt(name string) (int, bool) {
	valStr := os.Getenv(name)
	if valStr == "" {
		return 0, false
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, false
	}
	return val, true
}
