package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warung-pos/warung-pos/internal/analytics"
	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/insights"
	"github.com/warung-pos/warung-pos/internal/ledger"
	"github.com/warung-pos/warung-pos/internal/profile"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	LedgerHandler    *ledger.Handler
	AnalyticsHandler *analytics.Handler
	InsightHandler   *insights.Handler
	ProfileHandler   *profile.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}

	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/products", params.CatalogHandler.MountRoutes)
	r.Route("/transactions", params.LedgerHandler.MountRoutes)
	r.Route("/metrics", params.AnalyticsHandler.MountMetrics)
	r.Route("/reports", func(rr chi.Router) {
		params.AnalyticsHandler.MountReports(rr)
		params.InsightHandler.MountRoutes(rr)
	})
	r.Route("/profile", params.ProfileHandler.MountRoutes)

	return r
}
