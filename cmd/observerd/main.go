package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ncecere/llm_observability/backend/internal/app"
	"github.com/ncecere/llm_observability/backend/internal/config"
	"github.com/ncecere/llm_observability/backend/internal/database"
	"github.com/ncecere/llm_observability/backend/internal/httpserver"
	"github.com/ncecere/llm_observability/backend/internal/redisclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(ctx, cfg.Database); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
	}

	dbPool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer dbPool.Close()

	redisClient := redisclient.New(cfg.Redis)
	if err := redisclient.Ping(ctx, redisClient); err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	defer redisClient.Close()

	container, err := app.NewContainer(ctx, cfg, dbPool, redisClient, logger)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}
	if container.Observability != nil {
		defer container.Observability.Shutdown(ctx)
	}

	if err := container.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	server, err := httpserver.New(container)
	if err != nil {
		log.Fatalf("construct server: %v", err)
	}

	logger.Info("listening", "addr", cfg.Server.ListenAddr)
	if err := server.Listen(ctx); err != nil && err != context.Canceled {
		log.Fatalf("server stopped: %v", err)
	}
}
