package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/warung-pos/warung-pos/internal/app"
	"github.com/warung-pos/warung-pos/internal/insights"
	"github.com/warung-pos/warung-pos/internal/platform/store"
	"github.com/warung-pos/warung-pos/jobs"
)

func newGateway(ctx context.Context, cfg *app.Config) (store.Gateway, error) {
	switch cfg.StoreBackend {
	case "redis":
		return store.NewRedis(ctx, cfg.RedisAddr)
	case "postgres":
		return store.NewPostgres(ctx, cfg.PGDSN)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		logger.Error("connect store", slog.Any("error", err))
		os.Exit(1)
	}

	insightService := insights.NewService(insights.Config{
		APIKey:  cfg.InsightAPIKey,
		BaseURL: cfg.InsightBaseURL,
		Model:   cfg.InsightModel,
		Timeout: cfg.InsightTimeout,
	}, logger)
	refreshJob := jobs.NewInsightRefreshJob(gateway, insightService, cfg.LowStockThreshold, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInsightRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 21 * * *", Task: jobs.NewInsightRefreshTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
