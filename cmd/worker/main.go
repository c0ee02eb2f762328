package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/database"
	"github.com/qs3c/workshop_server/internal/pkg/email"
	"github.com/qs3c/workshop_server/internal/pkg/logger"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
	"github.com/qs3c/workshop_server/internal/worker"
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
	logger.Init(cfg.Log, "worker")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	processor := worker.NewProcessor(email.NewService(&cfg.Email))

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	log.Info().
		Int("max_workers", cfg.Queue.MaxWorkers).
		Str("queue", cfg.Queue.NotificationQueue).
		Msg("worker started")

	processor.Run(ctx, notifications, cfg.Queue.MaxWorkers, 5*time.Second)
	log.Info().Msg("worker shutdown complete")
}
