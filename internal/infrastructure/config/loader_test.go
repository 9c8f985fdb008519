package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CL_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.LockTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, entity.DefaultEconomyPolicy(), cfg.Economy.Policy())
	assert.Equal(t, 800*time.Millisecond, cfg.Transaction.RunnerConfig().Timeout)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CL_ENV", "test")
	t.Setenv("CL_DB_DRIVER", "memory")
	t.Setenv("CL_DB_PORT", "6543")
	t.Setenv("CL_SERVER_PORT", "9090")
	t.Setenv("CL_ADMIN_TOKEN", "s3cret")
	t.Setenv("CL_REDIS_ENABLED", "true")
	t.Setenv("CL_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CL_ECONOMY_DAILYCREDITCAP", "250")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Admin.Token)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(250), cfg.Economy.DailyCreditCap)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:      ServerConfig{Port: 8080},
			Database:    DatabaseConfig{Driver: DriverMemory},
			Transaction: TransactionConfig{Timeout: time.Second, MaxRetries: 3},
			Economy: EconomyConfig{
				CheckinReward:     5,
				AdReward:          10,
				LessonReward:      15,
				DailyCreditCap:    100,
				QuizPassScore:     70,
				GiveawayEntryCost: 50,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{name: "Unknown driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: "unsupported database driver"},
		{name: "Bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "Redis without address", mutate: func(c *Config) { c.Redis.Enabled = true }, wantErr: "redis.addr"},
		{name: "Zero reward", mutate: func(c *Config) { c.Economy.AdReward = 0 }, wantErr: "rewards must be positive"},
		{name: "Quiz score above 100", mutate: func(c *Config) { c.Economy.QuizPassScore = 101 }, wantErr: "quizPassScore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
