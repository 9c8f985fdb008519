package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/store"
	"github.com/amirhossein-jamali/credits-ledger/internal/testutil"
)

func newService(env *testutil.Env) *store.Service {
	return store.NewService(env.Runner, env.Ledger, env.Clock, env.Logger)
}

func TestRedeem_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 80)
	item := env.AddItem(t, entity.StoreItem{Code: "theme-dark", Name: "Dark theme", CreditsCost: 100, ItemType: entity.ItemTypeCosmetic})

	_, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	require.Error(t, err)

	var insufficient *errs.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Required)
	assert.Equal(t, int64(80), insufficient.Available)

	assert.Equal(t, int64(80), env.Balance(t, 1).Current())
	redemptions, err := svc.ListRedemptions(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, redemptions)
	inventory, err := svc.GetInventory(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, inventory)
}

func TestRedeem_Cosmetic(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 250)
	item := env.AddItem(t, entity.StoreItem{
		Code: "badge-gold", Name: "Gold badge", CreditsCost: 100,
		ItemType: entity.ItemTypeCosmetic, MaxPerUser: testutil.IntPtr(1),
	})

	res, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(150), res.Balance.Current)
	assert.Equal(t, int64(100), res.Balance.LifetimeSpent)
	assert.Equal(t, entity.RedemptionCompleted, res.Redemption.Status)
	require.NotNil(t, res.Inventory)
	assert.Equal(t, 1, res.Inventory.Quantity)
	assert.True(t, res.Inventory.Active)
	assert.Nil(t, res.Inventory.ExpiresAt)

	_, err = svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	assert.ErrorIs(t, err, errs.ErrOwnershipLimitReached)
	assert.Equal(t, int64(150), env.Balance(t, 1).Current())
}

func TestRedeem_ItemLookup(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 100)

	_, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: 999})
	assert.ErrorIs(t, err, errs.ErrItemNotFound)

	retired := &entity.StoreItem{Code: "retired", Name: "Retired", CreditsCost: 10, ItemType: entity.ItemTypeCosmetic}
	require.NoError(t, env.Store.GetCatalogRepository(ctx).Create(ctx, retired))
	_, err = svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: retired.ID})
	assert.ErrorIs(t, err, errs.ErrItemNotFound)

	_, err = svc.Redeem(ctx, 1, usecase.RedeemRequest{})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)

	catalog, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestRedeem_GiftCard(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 1000)
	item := env.AddItem(t, entity.StoreItem{Code: "gc-10", Name: "$10 gift card", CreditsCost: 500, ItemType: entity.ItemTypeGiftCard})

	for _, email := range []string{"", "not-an-email"} {
		_, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID, Email: email})
		assert.ErrorIs(t, err, errs.ErrEmailRequired)
	}
	assert.Equal(t, int64(1000), env.Balance(t, 1).Current())

	res, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID, Email: " user@example.com "})
	require.NoError(t, err)
	assert.Equal(t, entity.RedemptionPendingFulfillment, res.Redemption.Status)
	assert.Equal(t, "user@example.com", res.Redemption.DeliveryEmail)
	assert.Nil(t, res.Inventory)
	assert.Equal(t, int64(500), res.Balance.Current)

	inventory, err := svc.GetInventory(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, inventory)

	env.Clock.Advance(time.Hour)
	fulfilled, err := svc.FulfillRedemption(ctx, res.Redemption.ID, "GIFT-ABCD")
	require.NoError(t, err)
	assert.Equal(t, entity.RedemptionFulfilled, fulfilled.Status)
	assert.Equal(t, "GIFT-ABCD", fulfilled.FulfillmentCode)
	require.NotNil(t, fulfilled.FulfilledAt)
	assert.Equal(t, env.Clock.Now(), *fulfilled.FulfilledAt)

	_, err = svc.FulfillRedemption(ctx, res.Redemption.ID, "AGAIN")
	assert.ErrorIs(t, err, errs.ErrInvalidStatusTransition)

	_, err = svc.FulfillRedemption(ctx, 12345, "X")
	assert.ErrorIs(t, err, errs.ErrRedemptionNotFound)
}

func TestRedeem_Boost(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 300)
	item := env.AddItem(t, entity.StoreItem{
		Code: "xp-boost", Name: "Double XP", CreditsCost: 100,
		ItemType: entity.ItemTypeBoost, DurationDays: testutil.IntPtr(7),
	})

	res, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Inventory.ExpiresAt)
	assert.Equal(t, env.Clock.Now().Add(7*24*time.Hour), *res.Inventory.ExpiresAt)

	env.Clock.Advance(3 * 24 * time.Hour)
	_, err = svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	assert.ErrorIs(t, err, errs.ErrItemAlreadyActive)
	assert.Equal(t, int64(200), env.Balance(t, 1).Current())

	env.Clock.Advance(5 * 24 * time.Hour)
	inventory, err := svc.GetInventory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.False(t, inventory[0].Active)
	assert.True(t, inventory[0].Expired)
	assert.Equal(t, "xp-boost", inventory[0].Code)

	res, err = svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	require.NoError(t, err)
	assert.True(t, res.Inventory.Active)
	assert.Equal(t, 2, res.Inventory.Quantity)
	assert.Equal(t, int64(100), res.Balance.Current)
}

func TestRedeem_StreakSaver(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	env.CreateUser(t, 1, 10)
	env.Fund(t, 1, 200)
	item := env.AddItem(t, entity.StoreItem{
		Code: "streak-saver", Name: "Streak saver", CreditsCost: 60,
		ItemType: entity.ItemTypeConsumable, StreakSavers: 1, MaxPerUser: testutil.IntPtr(3),
	})

	for i := 1; i <= 3; i++ {
		res, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
		require.NoError(t, err)
		assert.Equal(t, i, res.Inventory.Quantity)
		assert.False(t, res.Inventory.Active)
	}
	assert.Equal(t, 3, env.Streak(t, 1).StreakSaverCount)
	assert.Equal(t, int64(20), env.Balance(t, 1).Current())

	env.Fund(t, 1, 100)
	_, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: item.ID})
	assert.ErrorIs(t, err, errs.ErrOwnershipLimitReached)
}

func TestRedeem_BannedUser(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	svc := newService(env)
	user := env.CreateUser(t, 1, 10)
	user.Ban("chargeback", env.Clock)
	require.NoError(t, env.Store.GetUserRepository(ctx).Update(ctx, user))

	_, err := svc.Redeem(ctx, 1, usecase.RedeemRequest{ItemID: 0})
	assert.ErrorIs(t, err, errs.ErrAccountBanned)
	_, err = svc.GetInventory(ctx, 1)
	assert.ErrorIs(t, err, errs.ErrAccountBanned)
}
