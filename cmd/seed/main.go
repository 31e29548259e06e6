package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/warung-pos/warung-pos/internal/app"
	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/platform/store"
	"github.com/warung-pos/warung-pos/internal/profile"
)

var demoProducts = []catalog.Product{
	{ID: "1", Name: "Kopi Arabika Gayo", SKU: "KOPI-001", Category: "Minuman", Price: 25000, Cost: 15000, Stock: 50, Unit: "pcs"},
	{ID: "2", Name: "Roti Bakar Coklat", SKU: "ROTI-001", Category: "Makanan", Price: 18000, Cost: 8000, Stock: 20, Unit: "pcs"},
	{ID: "3", Name: "Teh Tarik", SKU: "TEH-001", Category: "Minuman", Price: 12000, Cost: 5000, Stock: 35, Unit: "gelas"},
	{ID: "4", Name: "Gula Pasir 1kg", SKU: "GULA-001", Category: "Sembako", Price: 17000, Cost: 14000, Stock: 8, Unit: "kg"},
}

var demoProfile = profile.Profile{
	Name:    "Kedai Kopi Nusantara",
	Address: "Jl. Merdeka No. 12, Yogyakarta",
	Phone:   "0812-3456-7890",
	Owner:   "Bu Sari",
}

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
	reset := flag.Bool("reset", false, "clear all stored data before seeding")
	flag.Parse()

	ctx := context.Background()

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

	if *reset {
		if err := gateway.Clear(ctx); err != nil {
			logger.Error("clear store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("store cleared")
	}

	cat := catalog.New(gateway, logger, cfg.StoreTimeout)
	if err := cat.Load(ctx); err != nil {
		logger.Error("load catalog", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cat.Seed(ctx, demoProducts, *reset); err != nil {
		logger.Error("seed products", slog.Any("error", err))
		os.Exit(1)
	}

	profileService := profile.NewService(gateway, logger, cfg.StoreTimeout)
	if err := profileService.Save(ctx, demoProfile); err != nil {
		logger.Error("seed profile", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("seed complete", slog.Int("products", len(demoProducts)), slog.String("profile", demoProfile.Name))
}
