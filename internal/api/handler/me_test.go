package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/testutil"
)

func setupMeRouter(env *handlerEnv, userID int64) *gin.Engine {
	h := NewMeHandler(env.users, env.subs, env.gifts, env.donations, env.orders, env.credits)

	router := userRouter(userID)
	router.GET("/me/profile", h.GetProfile)
	router.GET("/me/subscriptions", h.ListSubscriptions)
	router.POST("/me/subscriptions", h.Enroll)
	router.POST("/me/gifts", h.BuyGift)
	router.POST("/me/donations", h.Donate)
	router.GET("/me/orders", h.ListOrders)
	router.POST("/me/orders", h.Checkout)
	router.GET("/me/credit", h.GetCredit)
	return router
}

func TestMeHandler_GetProfile(t *testing.T) {
	env := setupHandlerEnv(t)
	user := testutil.TestUser(t, env.db, testutil.WithName("profileuser"))
	router := setupMeRouter(env, user.ID)

	w := performRequest(router, "GET", "/me/profile", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
	info, ok := dataMap(t, resp)["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "profileuser", info["name"])
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	env := setupHandlerEnv(t)
	h := NewMeHandler(env.users, env.subs, env.gifts, env.donations, env.orders, env.credits)

	router := gin.New()
	router.GET("/me/profile", h.GetProfile)

	w := performRequest(router, "GET", "/me/profile", nil)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestMeHandler_Enroll(t *testing.T) {
	env := setupHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	workshop := testutil.TestWorkshop(t, env.db, testutil.WithWorkshopPrice(200))
	router := setupMeRouter(env, user.ID)

	body := map[string]interface{}{
		"workshop_id":    workshop.ID,
		"price_paid":     50,
		"payment_method": model.PaymentCard,
	}

	w := performRequest(router, "POST", "/me/subscriptions", body)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	data := dataMap(t, resp)
	assert.Equal(t, model.StatusPending, data["status"])
	assert.Equal(t, 150.0, data["remaining_amount"])

	w = performRequest(router, "POST", "/me/subscriptions", body)
	assert.Equal(t, response.CodeDuplicateAction, parseResponse(t, w).Code)
}

func TestMeHandler_Enroll_Errors(t *testing.T) {
	env := setupHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	workshop := testutil.TestWorkshop(t, env.db, testutil.WithWorkshopPrice(200))
	router := setupMeRouter(env, user.ID)

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"missing workshop", map[string]interface{}{"price_paid": 10}, response.CodeParamError},
		{"unknown workshop", map[string]interface{}{"workshop_id": 99999}, response.CodeResourceNotFound},
		{"bad payment method", map[string]interface{}{"workshop_id": workshop.ID, "payment_method": "BITCOIN"}, response.CodeParamError},
		{"credit without balance", map[string]interface{}{"workshop_id": workshop.ID, "credit_applied": 30}, response.CodeInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/me/subscriptions", tt.body)
			assert.Equal(t, tt.code, parseResponse(t, w).Code)
		})
	}
}

func TestMeHandler_CheckoutAndCredit(t *testing.T) {
	env := setupHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	product := testutil.TestProduct(t, env.db, 20, 1)
	testutil.TestCreditTx(t, env.db, user.ID, model.CreditAddition, 15)
	router := setupMeRouter(env, user.ID)

	w := performRequest(router, "POST", "/me/orders", dto.CheckoutRequest{
		Items:         []dto.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
		CreditApplied: 15,
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	w = performRequest(router, "POST", "/me/orders", dto.CheckoutRequest{
		Items: []dto.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.Equal(t, response.CodeInsufficientBalance, parseResponse(t, w).Code)

	w = performRequest(router, "GET", "/me/credit", nil)
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, 0.0, dataMap(t, resp)["balance"])

	w = performRequest(router, "GET", "/me/orders", nil)
	resp = parseResponse(t, w)
	orders, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, orders, 1)
}

func TestMeHandler_Donate(t *testing.T) {
	env := setupHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	workshop := testutil.TestWorkshop(t, env.db, testutil.WithWorkshopPrice(350))
	router := setupMeRouter(env, user.ID)

	w := performRequest(router, "POST", "/me/donations", map[string]interface{}{
		"workshop_id":  workshop.ID,
		"total_amount": 700,
		"seats":        2,
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	data := dataMap(t, resp)
	assert.Equal(t, float64(user.ID), data["user_id"])
	assert.Equal(t, true, data["is_pay_it_forward_donation"])

	var reloaded model.Workshop
	require.NoError(t, env.db.First(&reloaded, workshop.ID).Error)
	assert.Equal(t, 700.0, reloaded.PayItForwardBalance)
}

func TestMeHandler_BuyGift_InvalidTarget(t *testing.T) {
	env := setupHandlerEnv(t)
	user := testutil.TestUser(t, env.db)
	workshop := testutil.TestWorkshop(t, env.db, testutil.WithWorkshopPrice(100))
	router := setupMeRouter(env, user.ID)

	w := performRequest(router, "POST", "/me/gifts", map[string]interface{}{
		"workshop_id":    workshop.ID,
		"price_per_seat": 100,
		"target": map[string]interface{}{
			"kind":  "fund",
			"seats": 0,
		},
	})
	assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)

	w = performRequest(router, "POST", "/me/gifts", map[string]interface{}{
		"workshop_id":    workshop.ID,
		"price_per_seat": 100,
		"target": map[string]interface{}{
			"kind": "friend",
			"recipients": []map[string]string{
				{"name": "Friend", "email": fmt.Sprintf("friend_%d@example.com", user.ID)},
			},
		},
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
	assert.Equal(t, 100.0, dataMap(t, resp)["total"])
}
