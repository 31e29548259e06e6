package analytics

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warung-pos/warung-pos/internal/analytics/export"
	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/ledger"
	"github.com/warung-pos/warung-pos/internal/platform/httpx"
)

const defaultSeriesDays = 7
const maxSeriesDays = 90

// Handler serves the dashboard metrics and report downloads.
type Handler struct {
	logger    *slog.Logger
	catalog   *catalog.Catalog
	ledger    *ledger.Ledger
	threshold int
	now       func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, cat *catalog.Catalog, led *ledger.Ledger, lowStockThreshold int) *Handler {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Handler{
		logger:    logger,
		catalog:   cat,
		ledger:    led,
		threshold: lowStockThreshold,
		now:       time.Now,
	}
}

// MountMetrics registers the metric endpoints on the router.
func (h *Handler) MountMetrics(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/daily-series", h.dailySeries)
	r.Get("/low-stock", h.lowStock)
}

// MountReports registers the report download endpoints on the router.
func (h *Handler) MountReports(r chi.Router) {
	r.Get("/transactions.csv", h.exportCSV)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	txs := h.ledger.List()
	products := h.catalog.List()
	httpx.JSON(w, http.StatusOK, NewSummary(txs, products, h.now(), h.threshold))
}

func (h *Handler) dailySeries(w http.ResponseWriter, r *http.Request) {
	days := defaultSeriesDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxSeriesDays {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", fmt.Sprintf("days must be between 1 and %d", maxSeriesDays))
			return
		}
		days = parsed
	}
	httpx.JSON(w, http.StatusOK, TrailingDailySeries(h.ledger.List(), days, h.now()))
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.threshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}
	httpx.JSON(w, http.StatusOK, LowStock(h.catalog.List(), threshold))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("transaksi_%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := export.WriteTransactionsCSV(w, h.ledger.List()); err != nil {
		h.logger.Error("csv export failed", slog.Any("error", err))
	}
}
