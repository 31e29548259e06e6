package insights

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warung-pos/warung-pos/internal/platform/httpx"
	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Enqueuer schedules a background insight refresh.
type Enqueuer interface {
	EnqueueInsightRefresh(ctx context.Context) error
}

// Handler serves the cached insight and accepts refresh requests.
type Handler struct {
	logger   *slog.Logger
	gateway  store.Gateway
	enqueuer Enqueuer
}

// NewHandler constructs the insight HTTP handler.
func NewHandler(logger *slog.Logger, gateway store.Gateway, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, gateway: gateway, enqueuer: enqueuer}
}

// MountRoutes registers the insight endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/insight", h.get)
	r.Post("/insight", h.refresh)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	raw, err := h.gateway.Load(r.Context(), store.KeyInsight)
	if errors.Is(err, store.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no insight generated yet")
		return
	}
	if err != nil {
		h.logger.Error("load cached insight", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "insight cache could not be read")
		return
	}
	var analysis Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		h.logger.Error("decode cached insight", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "cached insight is corrupt")
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.enqueuer.EnqueueInsightRefresh(r.Context()); err != nil {
		h.logger.Error("enqueue insight refresh", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "insight refresh could not be scheduled")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}
