package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/api"
	"github.com/qs3c/workshop_server/internal/api/handler"
	"github.com/qs3c/workshop_server/internal/database"
	"github.com/qs3c/workshop_server/internal/pkg/cron"
	"github.com/qs3c/workshop_server/internal/pkg/logger"
	"github.com/qs3c/workshop_server/internal/pkg/oss"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
	"github.com/qs3c/workshop_server/internal/pkg/ws"
	"github.com/qs3c/workshop_server/internal/repository"
	"github.com/qs3c/workshop_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log, "server")

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	// 初始化 OSS（可选，用于账本快照）
	var uploader service.SnapshotUploader
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client, snapshot export disabled")
		} else {
			uploader = ossClient
			log.Info().Msg("OSS client initialized")
		}
	}

	// 事件与通知
	publisher := pubsub.NewPublisher(rdb)
	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	notifier := service.NewNotifier(publisher, notifications)

	// 初始化 Service
	store := repository.NewStore(db)
	subscriptionService := service.NewSubscriptionService(store, notifier)
	donationService := service.NewDonationService(store, notifier)
	giftService := service.NewGiftService(store, notifier)
	creditService := service.NewCreditService(store, notifier)
	orderService := service.NewOrderService(store, notifier)
	workshopService := service.NewWorkshopService(store)
	userService := service.NewUserService(store)
	authService := service.NewAuthService(store, giftService, cfg)
	maintenanceService := service.NewMaintenanceService(store, creditService, uploader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket Hub，订阅账本事件后推送
	wsHub := ws.NewHub()
	go func() {
		err := pubsub.NewSubscriber(rdb).Subscribe(ctx, wsHub.Dispatch)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("ledger event subscriber stopped")
		}
	}()

	// 定时任务
	scheduler := cron.NewService(maintenanceService, cfg.Ledger)
	scheduler.Start()

	// 初始化 Router
	router := api.NewRouter(api.Handlers{
		Auth:              handler.NewAuthHandler(authService),
		Catalog:           handler.NewCatalogHandler(workshopService, orderService),
		Me:                handler.NewMeHandler(userService, subscriptionService, giftService, donationService, orderService, creditService),
		WebSocket:         handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins),
		AdminSubscription: handler.NewAdminSubscriptionHandler(subscriptionService),
		AdminDonation:     handler.NewAdminDonationHandler(donationService),
		AdminGift:         handler.NewAdminGiftHandler(giftService),
		AdminCredit:       handler.NewAdminCreditHandler(creditService),
		AdminCatalog:      handler.NewAdminCatalogHandler(workshopService, orderService),
		AdminSystem:       handler.NewAdminSystemHandler(userService, maintenanceService, cfg.Ledger.TrashRetentionDay),
	}, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	<-scheduler.Stop().Done()
	cancel()
	log.Info().Msg("server shutdown complete")
}
