package giveaway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/giveaway"
	"github.com/amirhossein-jamali/credits-ledger/internal/testutil"
)

func newService(env *testutil.Env) *giveaway.Service {
	return giveaway.NewService(env.Runner, env.Ledger, env.Gate, env.Policy, env.Clock, env.Logger)
}

func TestClaimFreeEntry(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	g := env.AddGiveaway(t, 3)

	res, err := svc.ClaimFreeEntry(ctx, 1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ActionClaimFree, res.Action)
	assert.Equal(t, 1, res.Entries.Free)
	assert.Equal(t, 1, res.Entries.Total)

	_, err = svc.ClaimFreeEntry(ctx, 1, g.ID)
	assert.ErrorIs(t, err, errs.ErrAlreadyClaimed)

	summary, err := svc.GetEntries(ctx, 1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}

func TestFreeEntryIsRequiredFirst(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 500)
	g := env.AddGiveaway(t, 3)

	_, err := svc.BuyEntry(ctx, 1, g.ID)
	assert.ErrorIs(t, err, errs.ErrFreeEntryRequired)
	_, err = svc.EarnBonusEntry(ctx, 1, g.ID, "quiz")
	assert.ErrorIs(t, err, errs.ErrFreeEntryRequired)

	assert.Equal(t, int64(500), env.Balance(t, 1).Current())
}

func TestBuyEntry(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 120)
	g := env.AddGiveaway(t, 3)

	_, err := svc.ClaimFreeEntry(ctx, 1, g.ID)
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		res, err := svc.BuyEntry(ctx, 1, g.ID)
		require.NoError(t, err)
		assert.Equal(t, i, res.Entries.Paid)
		require.NotNil(t, res.Balance)
	}
	assert.Equal(t, int64(20), env.Balance(t, 1).Current())

	_, err = svc.BuyEntry(ctx, 1, g.ID)
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

	summary, err := svc.GetEntries(ctx, 1, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Paid)
	assert.Equal(t, 3, summary.Total)
}

func TestEarnBonusEntry(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, svc *giveaway.Service, env *testutil.Env) {
		env.CreateUser(t, 1, 10)
		g := env.AddGiveaway(t, 2)

		_, err := svc.ClaimFreeEntry(ctx, 1, g.ID)
		require.NoError(t, err)

		res, err := svc.EarnBonusEntry(ctx, 1, g.ID, "watched_stream")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Entries.Bonus)
		require.NotNil(t, res.Entries.NextBonusAt)
		assert.Equal(t, env.Clock.Now().Add(12*time.Hour), *res.Entries.NextBonusAt)

		env.Clock.Advance(11 * time.Hour)
		_, err = svc.EarnBonusEntry(ctx, 1, g.ID, "watched_stream")
		require.Error(t, err)
		var cooldown *errs.CooldownError
		require.ErrorAs(t, err, &cooldown)
		assert.Equal(t, testutil.Now.Add(12*time.Hour), cooldown.AvailableAt)

		env.Clock.Advance(time.Hour)
		res, err = svc.EarnBonusEntry(ctx, 1, g.ID, "shared_post")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Entries.Bonus)
		assert.Equal(t, 3, res.Entries.Total)

		env.Clock.Advance(12 * time.Hour)
		_, err = svc.EarnBonusEntry(ctx, 1, g.ID, "shared_post")
		assert.ErrorIs(t, err, errs.ErrBonusLimitReached)
	}

	t.Run("With completion gate", func(t *testing.T) {
		env := testutil.NewEnv(t)
		run(t, newService(env), env)
	})

	t.Run("Without completion gate", func(t *testing.T) {
		env := testutil.NewEnv(t)
		run(t, giveaway.NewService(env.Runner, env.Ledger, nil, env.Policy, env.Clock, env.Logger), env)
	})

	t.Run("Engagement type is required", func(t *testing.T) {
		env := testutil.NewEnv(t)
		svc := newService(env)
		env.CreateUser(t, 1, 10)
		g := env.AddGiveaway(t, 2)

		_, err := svc.EarnBonusEntry(ctx, 1, g.ID, "  ")
		assert.ErrorIs(t, err, errs.ErrInvalidEngagementType)
	})
}

func TestEnterGiveaway(t *testing.T) {
	ctx := context.Background()

	t.Run("Dispatches by action", func(t *testing.T) {
		env := testutil.NewEnv(t)
		svc := newService(env)
		env.CreateUser(t, 1, 10)
		env.Fund(t, 1, 50)
		g := env.AddGiveaway(t, 1)

		res, err := svc.EnterGiveaway(ctx, 1, g.ID, "claim_free", "")
		require.NoError(t, err)
		assert.Equal(t, entity.ActionClaimFree, res.Action)

		res, err = svc.EnterGiveaway(ctx, 1, g.ID, "buy", "")
		require.NoError(t, err)
		assert.Equal(t, entity.ActionBuy, res.Action)
		assert.Equal(t, int64(0), res.Balance.Current)

		res, err = svc.EnterGiveaway(ctx, 1, g.ID, "bonus", "daily_quiz")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Entries.Total)
	})

	t.Run("Unknown action", func(t *testing.T) {
		env := testutil.NewEnv(t)
		svc := newService(env)
		env.CreateUser(t, 1, 10)
		g := env.AddGiveaway(t, 1)

		_, err := svc.EnterGiveaway(ctx, 1, g.ID, "steal", "")
		assert.ErrorIs(t, err, errs.ErrInvalidGiveawayAction)
	})

	t.Run("Closed and missing giveaways", func(t *testing.T) {
		env := testutil.NewEnv(t)
		svc := newService(env)
		env.CreateUser(t, 1, 10)
		g := env.AddGiveaway(t, 1)

		_, err := svc.EnterGiveaway(ctx, 1, 999, "claim_free", "")
		assert.ErrorIs(t, err, errs.ErrGiveawayNotFound)

		env.Clock.Advance(7 * 24 * time.Hour)
		_, err = svc.EnterGiveaway(ctx, 1, g.ID, "claim_free", "")
		assert.ErrorIs(t, err, errs.ErrGiveawayClosed)
	})

	t.Run("Banned users are rejected before the action is parsed", func(t *testing.T) {
		env := testutil.NewEnv(t)
		svc := newService(env)
		user := env.CreateUser(t, 1, 10)
		user.Ban("multi-accounting", env.Clock)
		require.NoError(t, env.Store.GetUserRepository(ctx).Update(ctx, user))

		_, err := svc.EnterGiveaway(ctx, 1, 1, "steal", "")
		assert.ErrorIs(t, err, errs.ErrAccountBanned)
	})
}
