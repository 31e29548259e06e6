package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warung-pos/warung-pos/internal/analytics"
	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/insights"
	"github.com/warung-pos/warung-pos/internal/ledger"
	"github.com/warung-pos/warung-pos/internal/platform/store"
	"github.com/warung-pos/warung-pos/internal/profile"
)

type noopEnqueuer struct{}

func (noopEnqueuer) EnqueueInsightRefresh(ctx context.Context) error { return nil }

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := store.NewMemory()
	cat := catalog.New(gateway, logger, time.Second)
	led := ledger.New(cat, gateway, logger, time.Second)

	return NewRouter(RouterParams{
		Logger:           logger,
		Config:           &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second},
		CatalogHandler:   catalog.NewHandler(logger, cat),
		LedgerHandler:    ledger.NewHandler(logger, led),
		AnalyticsHandler: analytics.NewHandler(logger, cat, led, analytics.DefaultLowStockThreshold),
		InsightHandler:   insights.NewHandler(logger, gateway, noopEnqueuer{}),
		ProfileHandler:   profile.NewHandler(logger, profile.NewService(gateway, logger, time.Second)),
	})
}

func TestRouterHealthz(t *testing.T) {
	srv := httptest.NewServer(newRouter(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestRouterMountsModules(t *testing.T) {
	srv := httptest.NewServer(newRouter(t))
	t.Cleanup(srv.Close)

	for _, path := range []string{
		"/products",
		"/transactions",
		"/metrics/summary",
		"/metrics/low-stock",
		"/reports/transactions.csv",
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/reports/insight")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
