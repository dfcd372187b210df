package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/docvault/internal/tasks"
	"github.com/hugh/docvault/pkg/config"
	"github.com/hugh/docvault/pkg/queue"
	"github.com/hugh/docvault/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting docvault worker", "backend", cfg.Ingestion.BackendURL)
	if cfg.Ingestion.BackendURL == "" {
		logger.Warn("INGESTION_BACKEND_URL not set, ingestion triggers will fail without retry")
	}

	srv := queue.NewServer(&cfg.Redis, 10)

	handler := tasks.NewHandler(&cfg.Ingestion, logger)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	if err := srv.Start(mux); err != nil {
		logger.Error("worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	srv.Shutdown()
	logger.Info("worker stopped")
}
