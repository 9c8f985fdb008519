package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/credits-ledger/internal/testutil"
)

func newUseCase(env *testutil.Env) *user.UserUseCase {
	return user.NewUserUseCase(env.Runner, env.Ledger, env.Policy, env.Clock, env.Logger)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates an empty account in the new tier", func(t *testing.T) {
		env := testutil.NewEnv(t)
		uc := newUseCase(env)

		view, err := uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 7, Email: " someone@example.com "})
		require.NoError(t, err)
		assert.Equal(t, uint64(7), view.UserID)
		assert.Equal(t, "someone@example.com", view.Email)
		assert.Equal(t, int64(0), view.Balance.Current)
		assert.Equal(t, 0, view.Streak.CurrentStreak)
		assert.Nil(t, view.Streak.LastCheckinDate)
		assert.Equal(t, "new", view.Tier.Name)
		assert.Equal(t, int64(50), view.Tier.DailyCreditCap)
		assert.Equal(t, "0.5", view.Tier.CapMultiplier)
	})

	t.Run("Duplicate user", func(t *testing.T) {
		env := testutil.NewEnv(t)
		uc := newUseCase(env)

		_, err := uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 7})
		require.NoError(t, err)
		_, err = uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 7})
		assert.ErrorIs(t, err, errs.ErrDuplicateUser)
	})

	t.Run("Invalid input", func(t *testing.T) {
		env := testutil.NewEnv(t)
		uc := newUseCase(env)

		_, err := uc.CreateUser(ctx, usecase.CreateUserRequest{})
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
		_, err = uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 1, Email: "nope"})
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestGetAccount_TierFollowsTheClock(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	uc := newUseCase(env)

	_, err := uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 1})
	require.NoError(t, err)

	steps := []struct {
		advance time.Duration
		tier    string
		cap     int64
	}{
		{0, "new", 50},
		{3 * 24 * time.Hour, "probation", 75},
		{4 * 24 * time.Hour, "standard", 100},
		{23 * 24 * time.Hour, "trusted", 120},
	}
	for _, step := range steps {
		env.Clock.Advance(step.advance)
		view, err := uc.GetAccount(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, step.tier, view.Tier.Name)
		assert.Equal(t, step.cap, view.Tier.DailyCreditCap)
	}
}

func TestBanUser(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	uc := newUseCase(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 40)

	require.NoError(t, uc.BanUser(ctx, 1, "fraud ring"))

	_, err := uc.GetAccount(ctx, 1)
	require.Error(t, err)
	var banned *errs.AccountBannedError
	require.ErrorAs(t, err, &banned)
	assert.Equal(t, "fraud ring", banned.Reason)

	// history is kept
	assert.Equal(t, int64(40), env.Balance(t, 1).Current())

	require.NoError(t, uc.UnbanUser(ctx, 1))
	view, err := uc.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.False(t, view.Banned)
	assert.Equal(t, int64(40), view.Balance.Current)

	assert.ErrorIs(t, uc.BanUser(ctx, 404, "x"), errs.ErrUserNotFound)
	assert.ErrorIs(t, uc.BanUser(ctx, 0, "x"), errs.ErrInvalidUserID)
}

func TestAccountLogsUseUserIDKey(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	obsCore, logs := observer.New(zapcore.DebugLevel)
	uc := user.NewUserUseCase(env.Runner, env.Ledger, env.Policy, env.Clock, logger.NewZapLoggerFromCore(obsCore))

	_, err := uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 3})
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, usecase.CreateUserRequest{UserID: 3})
	require.ErrorIs(t, err, errs.ErrDuplicateUser)
	require.NoError(t, uc.BanUser(ctx, 3, "spam"))
	require.NoError(t, uc.UnbanUser(ctx, 3))

	for _, msg := range []string{"User created", "Failed to create user", "User banned", "User unbanned"} {
		entries := logs.FilterMessage(msg).All()
		require.NotEmpty(t, entries, msg)
		fields := entries[0].ContextMap()
		assert.EqualValues(t, 3, fields["user_id"], msg)
		assert.NotContains(t, fields, "userId", msg)
	}
}
