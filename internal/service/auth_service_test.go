package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/jwt"
	"github.com/qs3c/workshop_server/internal/testutil"
)

func TestAuthService_Register_Success(t *testing.T) {
	env := setupEnv(t)

	resp, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Name:     "newuser",
		Email:    "newuser@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
	assert.Zero(t, resp.ClaimedGifts)

	user := env.reloadUser(t, resp.UserID)
	assert.Equal(t, model.RoleUser, user.Role)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "password123", *user.PasswordHash)
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "user1",
		Email:    "duplicate@example.com",
		Phone:    "+971500000100",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "user2",
		Email:    "duplicate@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "user3",
		Phone:    "+971500000100",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrPhoneExists)

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "user4",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrContactRequired)
}

func TestAuthService_Register_ClaimsGifts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	workshop := testutil.TestWorkshop(t, env.db)
	gift := testutil.TestPendingGift(t, env.db, workshop.ID, testutil.ForRecipient("+971500000200", ""))

	resp, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "recipient",
		Phone:    "+971500000200",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ClaimedGifts)

	reloaded, err := env.store.Gifts.GetByID(gift.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ClaimedByUserID)
	assert.Equal(t, resp.UserID, *reloaded.ClaimedByUserID)
	assert.Equal(t, int64(1), env.countSubs(t, resp.UserID))
}

func TestAuthService_Login(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "loginuser",
		Email:    "login@example.com",
		Phone:    "+971500000300",
		Password: "password123",
	})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "login@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "loginuser", resp.User.Name)

		claims, err := jwt.ParseToken(resp.Token, "test-secret-key-for-testing")
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, model.RoleUser, claims.Role)
	})

	t.Run("by phone", func(t *testing.T) {
		resp, err := env.auth.Login(ctx, &dto.LoginRequest{Phone: "+971500000300", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "login@example.com", Password: "wrongpassword"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("account without password", func(t *testing.T) {
		user := testutil.TestUser(t, env.db, testutil.WithEmail("nopass@example.com"), func(u *model.User) {
			u.PasswordHash = nil
		})
		_, err := env.auth.Login(ctx, &dto.LoginRequest{Email: *user.Email, Password: "password123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Register_ActivatesGiftAccount(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	workshop := testutil.TestWorkshop(t, env.db)
	gift := testutil.TestPendingGift(t, env.db, workshop.ID, testutil.ForRecipient("+971500000400", ""))

	claim, err := env.gifts.AdminManualClaimGift(ctx, gift.ID, dto.ContactInfo{
		Name:  "Walk-in",
		Phone: "+971500000400",
	})
	require.NoError(t, err)
	require.True(t, claim.UserCreated)

	resp, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "Recipient",
		Email:    "recipient@example.com",
		Phone:    "+971500000400",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.True(t, resp.Activated)
	assert.Equal(t, claim.UserID, resp.UserID)

	user := env.reloadUser(t, resp.UserID)
	assert.Equal(t, "Recipient", user.Name)
	require.NotNil(t, user.Email)
	assert.Equal(t, "recipient@example.com", *user.Email)
	assert.Equal(t, int64(1), env.countSubs(t, user.ID), "the claimed gift stays with the account")

	login, err := env.auth.Login(ctx, &dto.LoginRequest{Phone: "+971500000400", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, login.User.ID)

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{
		Name:     "Again",
		Phone:    "+971500000400",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrPhoneExists)
}

func TestAuthService_Register_ContactsOnDifferentAccounts(t *testing.T) {
	env := setupEnv(t)
	noPassword := func(u *model.User) { u.PasswordHash = nil }
	testutil.TestUser(t, env.db, testutil.WithEmail("split@example.com"), noPassword)
	testutil.TestUser(t, env.db, testutil.WithPhone("+971500000500"), testutil.WithoutEmail(), noPassword)

	_, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Name:     "Split",
		Email:    "split@example.com",
		Phone:    "+971500000500",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrPhoneExists)
}
