package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
)

// Options configures the redis connection
type Options struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient connects to redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// RedisGate stores completion markers as keys expiring at the recorded moment.
// The value is the expiry in unix milliseconds so callers can report when the action reopens.
type RedisGate struct {
	client       *redis.Client
	prefix       string
	timeProvider coreport.TimeProvider
}

// NewRedisGate creates a completion gate backed by redis
func NewRedisGate(client *redis.Client, prefix string, timeProvider coreport.TimeProvider) *RedisGate {
	return &RedisGate{client: client, prefix: prefix, timeProvider: timeProvider}
}

func (g *RedisGate) key(key string) string {
	return g.prefix + key
}

// DoneUntil returns the recorded expiry of key
func (g *RedisGate) DoneUntil(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := g.client.Get(ctx, g.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read completion marker: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed completion marker %q: %w", raw, err)
	}
	until := time.UnixMilli(ms).UTC()
	if !g.timeProvider.Now().Before(until) {
		return time.Time{}, false, nil
	}
	return until, true, nil
}

// MarkDone records key until the given moment
func (g *RedisGate) MarkDone(ctx context.Context, key string, until time.Time) error {
	ttl := until.Sub(g.timeProvider.Now())
	if ttl <= 0 {
		return nil
	}
	if err := g.client.Set(ctx, g.key(key), strconv.FormatInt(until.UnixMilli(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("failed to write completion marker: %w", err)
	}
	return nil
}
