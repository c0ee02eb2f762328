package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/api/handler"
	"github.com/qs3c/workshop_server/internal/api/middleware"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Auth              *handler.AuthHandler
	Catalog           *handler.CatalogHandler
	Me                *handler.MeHandler
	WebSocket         *handler.WebSocketHandler
	AdminSubscription *handler.AdminSubscriptionHandler
	AdminDonation     *handler.AdminDonationHandler
	AdminGift         *handler.AdminGiftHandler
	AdminCredit       *handler.AdminCreditHandler
	AdminCatalog      *handler.AdminCatalogHandler
	AdminSystem       *handler.AdminSystemHandler
}

type Router struct {
	h   Handlers
	cfg *config.Config
}

func NewRouter(h Handlers, cfg *config.Config) *Router {
	return &Router{h: h, cfg: cfg}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/healthz", func(c *gin.Context) {
		c.String(200, "ok")
	})

	api := engine.Group("/api/v1")
	{
		api.GET("/ws", r.h.WebSocket.Handle)

		// 公开接口
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.h.Auth.Register)
			auth.POST("/login", r.h.Auth.Login)
		}
		api.GET("/workshops", r.h.Catalog.ListWorkshops)
		api.GET("/workshops/:id", r.h.Catalog.GetWorkshop)
		api.GET("/products", r.h.Catalog.ListProducts)

		// 当前用户
		me := api.Group("/me")
		me.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			me.GET("/profile", r.h.Me.GetProfile)
			me.GET("/subscriptions", r.h.Me.ListSubscriptions)
			me.POST("/subscriptions", r.h.Me.Enroll)
			me.POST("/gifts", r.h.Me.BuyGift)
			me.POST("/donations", r.h.Me.Donate)
			me.GET("/orders", r.h.Me.ListOrders)
			me.POST("/orders", r.h.Me.Checkout)
			me.GET("/credit", r.h.Me.GetCredit)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly())
		{
			r.setupAdmin(admin)
		}
	}

	return engine
}

func (r *Router) setupAdmin(admin *gin.RouterGroup) {
	// 工作坊与套餐
	workshops := admin.Group("/workshops")
	{
		workshops.GET("", r.h.AdminCatalog.ListWorkshops)
		workshops.POST("", r.h.AdminCatalog.CreateWorkshop)
		workshops.PUT("/:id", r.h.AdminCatalog.UpdateWorkshop)
		workshops.DELETE("/:id", r.h.AdminCatalog.DeleteWorkshop)
		workshops.POST("/:id/restore", r.h.AdminCatalog.RestoreWorkshop)
		workshops.POST("/:id/packages", r.h.AdminCatalog.AddPackage)
		workshops.PUT("/:id/packages/:packageId", r.h.AdminCatalog.UpdatePackage)
		workshops.DELETE("/:id/packages/:packageId", r.h.AdminCatalog.DeletePackage)
		workshops.POST("/:id/packages/:packageId/restore", r.h.AdminCatalog.RestorePackage)
		workshops.GET("/:id/donors", r.h.AdminDonation.ListDonors)
	}

	// 商品
	admin.POST("/products", r.h.AdminCatalog.CreateProduct)
	admin.PUT("/products/:id", r.h.AdminCatalog.UpdateProduct)

	// 订阅
	admin.GET("/subscriptions", r.h.AdminSubscription.List)
	admin.POST("/subscriptions", r.h.AdminSubscription.Add)
	admin.GET("/subscriptions/:subId", r.h.AdminSubscription.Get)
	admin.GET("/reports/debt", r.h.AdminSubscription.DebtReport)

	// 用户维度
	users := admin.Group("/users")
	{
		users.GET("", r.h.AdminSystem.ListUsers)
		users.GET("/:userId", r.h.AdminSystem.GetUserProfile)
		users.GET("/:userId/orders", r.h.AdminCatalog.ListUserOrders)

		subs := users.Group("/:userId/subscriptions")
		{
			subs.GET("", r.h.AdminSubscription.ListForUser)
			subs.PUT("/:subId", r.h.AdminSubscription.Update)
			subs.DELETE("/:subId", r.h.AdminSubscription.Delete)
			subs.POST("/:subId/approve", r.h.AdminSubscription.Approve)
			subs.POST("/:subId/refund", r.h.AdminSubscription.Refund)
			subs.POST("/:subId/reactivate", r.h.AdminSubscription.Reactivate)
			subs.POST("/:subId/complete", r.h.AdminSubscription.Complete)
			subs.POST("/:subId/transfer", r.h.AdminSubscription.Transfer)
			subs.POST("/:subId/restore", r.h.AdminSubscription.Restore)
			subs.DELETE("/:subId/purge", r.h.AdminSubscription.Purge)
		}

		credit := users.Group("/:userId/credit")
		{
			credit.GET("", r.h.AdminCredit.History)
			credit.POST("/add", r.h.AdminCredit.Add)
			credit.POST("/subtract", r.h.AdminCredit.Subtract)
			credit.POST("/reconcile", r.h.AdminCredit.Reconcile)
			credit.DELETE("/transactions/:txId", r.h.AdminCredit.Delete)
			credit.POST("/transactions/:txId/restore", r.h.AdminCredit.Restore)
			credit.DELETE("/transactions/:txId/purge", r.h.AdminCredit.Purge)
		}
	}

	// pay-it-forward
	donations := admin.Group("/donations")
	{
		donations.POST("", r.h.AdminDonation.Donate)
		donations.POST("/grant", r.h.AdminDonation.Grant)
		donations.POST("/:subId/reclaim", r.h.AdminDonation.Reclaim)
	}

	// 礼物
	gifts := admin.Group("/gifts")
	{
		gifts.GET("", r.h.AdminGift.List)
		gifts.POST("", r.h.AdminGift.Add)
		gifts.PUT("/:id", r.h.AdminGift.Update)
		gifts.DELETE("/:id", r.h.AdminGift.Delete)
		gifts.POST("/:id/claim", r.h.AdminGift.Claim)
		gifts.POST("/:id/restore", r.h.AdminGift.Restore)
		gifts.DELETE("/:id/purge", r.h.AdminGift.Purge)
	}

	// 维护
	admin.POST("/credit/reconcile", r.h.AdminSystem.ReconcileAll)
	admin.POST("/trash/purge", r.h.AdminSystem.PurgeTrash)
	admin.POST("/snapshot", r.h.AdminSystem.ExportSnapshot)
}
