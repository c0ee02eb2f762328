package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/api/middleware"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/repository"
	"github.com/qs3c/workshop_server/internal/service"
	"github.com/qs3c/workshop_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key"

type handlerEnv struct {
	db    *gorm.DB
	store *repository.Store

	subs        *service.SubscriptionService
	donations   *service.DonationService
	gifts       *service.GiftService
	credits     *service.CreditService
	orders      *service.OrderService
	workshops   *service.WorkshopService
	users       *service.UserService
	auth        *service.AuthService
	maintenance *service.MaintenanceService
}

// setupHandlerEnv 真实 service + SQLite，不推送事件
func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	store := repository.NewStore(db)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      testJWTSecret,
			ExpireHours: 24,
		},
	}

	env := &handlerEnv{
		db:        db,
		store:     store,
		subs:      service.NewSubscriptionService(store, nil),
		donations: service.NewDonationService(store, nil),
		gifts:     service.NewGiftService(store, nil),
		credits:   service.NewCreditService(store, nil),
		orders:    service.NewOrderService(store, nil),
		workshops: service.NewWorkshopService(store),
		users:     service.NewUserService(store),
	}
	env.auth = service.NewAuthService(store, env.gifts, cfg)
	env.maintenance = service.NewMaintenanceService(store, env.credits, nil)
	return env
}

// mockAuth 跳过 JWT，直接注入用户
func mockAuth(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func userRouter(userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID, model.RoleUser))
	return router
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 取出 data 字段
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}
