package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/warung-pos/warung-pos/internal/analytics"
	"github.com/warung-pos/warung-pos/internal/app"
	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/insights"
	"github.com/warung-pos/warung-pos/internal/ledger"
	"github.com/warung-pos/warung-pos/internal/platform/store"
	"github.com/warung-pos/warung-pos/internal/profile"
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
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	cat := catalog.New(gateway, logger, cfg.StoreTimeout)
	led := ledger.New(cat, gateway, logger, cfg.StoreTimeout)

	g, loadCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return cat.Load(loadCtx) })
	g.Go(func() error { return led.Load(loadCtx) })
	if err := g.Wait(); err != nil {
		logger.Error("load state", slog.Any("error", err))
		os.Exit(1)
	}

	profileService := profile.NewService(gateway, logger, cfg.StoreTimeout)

	queueClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalog.NewHandler(logger, cat),
		LedgerHandler:    ledger.NewHandler(logger, led),
		AnalyticsHandler: analytics.NewHandler(logger, cat, led, cfg.LowStockThreshold),
		InsightHandler:   insights.NewHandler(logger, gateway, queueClient),
		ProfileHandler:   profile.NewHandler(logger, profileService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
