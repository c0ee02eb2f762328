package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/testutil"
)

func TestUserService_GetProfile_Success(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testutil.TestUser(t, env.db, testutil.WithName("profileuser"))
	workshop := testutil.TestWorkshop(t, env.db, testutil.WithWorkshopPrice(200))
	testutil.TestSubscription(t, env.db, user.ID, workshop.ID, testutil.WithPricePaid(150))
	testutil.TestPendingGift(t, env.db, workshop.ID, func(g *model.PendingGift) {
		g.GifterUserID = &user.ID
	})
	product := testutil.TestProduct(t, env.db, 10, 5)

	_, err := env.credits.AddCredit(ctx, user.ID, 30, "")
	require.NoError(t, err)
	_, err = env.orders.Checkout(ctx, user.ID, &dto.CheckoutRequest{
		Items:         []dto.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		CreditApplied: 10,
	})
	require.NoError(t, err)

	profile, err := env.users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.User.ID)
	assert.Equal(t, "profileuser", profile.User.Name)
	assert.Equal(t, 20.0, profile.User.InternalCredit)

	require.Len(t, profile.Subscriptions, 1)
	assert.Equal(t, 50.0, profile.Subscriptions[0].RemainingAmount)
	assert.Equal(t, 20.0, profile.Credit.Balance)
	assert.Len(t, profile.Credit.Lines, 2)
	assert.Len(t, profile.Orders, 1)
	assert.Len(t, profile.GiftsSent, 1)
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	env := setupEnv(t)

	_, err := env.users.GetProfile(context.Background(), 99999)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestUserService_ListUsers(t *testing.T) {
	env := setupEnv(t)
	for i := 0; i < 3; i++ {
		testutil.TestUser(t, env.db)
	}

	users, total, err := env.users.ListUsers(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}
