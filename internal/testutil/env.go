// Package testutil wires the domain services onto the in-memory store and a manual clock.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/fraud"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/memory"
	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
)

// Now is the moment every Env starts at: mid-afternoon UTC
var Now = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

// Env bundles the collaborators shared by the use case tests
type Env struct {
	Clock   *timeprovider.ManualTimeProvider
	Store   *memory.Store
	Logger  coreport.Logger
	Runner  *txn.Runner
	Ledger  *ledger.Ledger
	Devices *fraud.DeviceTracker
	Flags   *fraud.Recorder
	Gate    *cache.MemoryGate
	Policy  entity.EconomyPolicy
}

// NewEnv builds a fresh environment with default economy policy
func NewEnv(t testing.TB) *Env {
	t.Helper()

	clock := timeprovider.NewManualTimeProvider(Now)
	log := logger.NewNoopLogger()
	store := memory.NewStore(log)

	cfg := txn.DefaultConfig()
	cfg.Timeout = 5 * time.Second

	runner := txn.NewRunner(store, clock, log, cfg)
	env := &Env{
		Clock:   clock,
		Store:   store,
		Logger:  log,
		Runner:  runner,
		Ledger:  ledger.NewLedger(runner, clock, log),
		Devices: fraud.NewDeviceTracker(store, clock, log),
		Flags:   fraud.NewRecorder(store, clock, log),
		Gate:    cache.NewMemoryGate(clock),
		Policy:  entity.DefaultEconomyPolicy(),
	}
	t.Cleanup(env.Flags.Wait)
	return env
}

// CreateUser inserts a user created ageDays before the current clock, with an empty balance and streak
func (e *Env) CreateUser(t testing.TB, id uint64, ageDays int) *entity.User {
	t.Helper()

	ctx := context.Background()
	createdAt := e.Clock.Now().Add(-time.Duration(ageDays) * 24 * time.Hour)
	user := &entity.User{ID: id, CreatedAt: createdAt, UpdatedAt: createdAt}

	err := e.Runner.Run(ctx, func(ctx context.Context) error {
		if err := e.Store.GetUserRepository(ctx).Create(ctx, user); err != nil {
			return err
		}
		if err := e.Store.GetBalanceRepository(ctx).Create(ctx, entity.NewBalance(id, e.Clock)); err != nil {
			return err
		}
		return e.Store.GetStreakRepository(ctx).Create(ctx, entity.NewStreak(id, createdAt))
	})
	require.NoError(t, err)
	return user
}

// Fund credits the user without recording an earn event
func (e *Env) Fund(t testing.TB, userID uint64, amount int64) {
	t.Helper()
	_, err := e.Ledger.Credit(context.Background(), userID, amount, nil)
	require.NoError(t, err)
}

// Balance reads the committed balance
func (e *Env) Balance(t testing.TB, userID uint64) *entity.Balance {
	t.Helper()
	b, err := e.Store.GetBalanceRepository(context.Background()).GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return b
}

// Streak reads the committed streak
func (e *Env) Streak(t testing.TB, userID uint64) *entity.Streak {
	t.Helper()
	s, err := e.Store.GetStreakRepository(context.Background()).GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return s
}

// SetStreak overwrites the user's streak
func (e *Env) SetStreak(t testing.TB, streak *entity.Streak) {
	t.Helper()
	require.NoError(t, e.Store.GetStreakRepository(context.Background()).Save(context.Background(), streak))
}

// AddItem inserts a catalog item
func (e *Env) AddItem(t testing.TB, item entity.StoreItem) *entity.StoreItem {
	t.Helper()
	item.Active = true
	if item.CreatedAt.IsZero() {
		item.CreatedAt = e.Clock.Now()
	}
	require.NoError(t, e.Store.GetCatalogRepository(context.Background()).Create(context.Background(), &item))
	return &item
}

// AddGiveaway inserts a giveaway open for a week around the current clock
func (e *Env) AddGiveaway(t testing.TB, bonusEntries int) *entity.Giveaway {
	t.Helper()
	g := &entity.Giveaway{
		Title:                 "Spring raffle",
		BonusEntriesAvailable: bonusEntries,
		StartsAt:              e.Clock.Now().Add(-24 * time.Hour),
		EndsAt:                e.Clock.Now().Add(6 * 24 * time.Hour),
		Active:                true,
	}
	require.NoError(t, e.Store.GetGiveawayRepository(context.Background()).Create(context.Background(), g))
	return g
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }
