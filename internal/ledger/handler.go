package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warung-pos/warung-pos/internal/catalog"
	"github.com/warung-pos/warung-pos/internal/platform/httpx"
	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Handler wires HTTP endpoints for transaction posting and history.
type Handler struct {
	logger   *slog.Logger
	ledger   *Ledger
	validate *validator.Validate
}

// NewHandler constructs a ledger handler.
func NewHandler(logger *slog.Logger, ledger *Ledger) *Handler {
	return &Handler{logger: logger, ledger: ledger, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleAdd)
}

type transactionItemRequest struct {
	ProductID          string `json:"productId" validate:"required"`
	ProductName        string `json:"productName"`
	Quantity           int    `json:"quantity" validate:"gt=0"`
	PriceAtTransaction int64  `json:"priceAtTransaction" validate:"gte=0"`
	CostAtTransaction  int64  `json:"costAtTransaction" validate:"gte=0"`
}

type transactionRequest struct {
	Type          string                   `json:"type" validate:"required,oneof=SALE PURCHASE"`
	Items         []transactionItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount   int64                    `json:"totalAmount" validate:"gte=0"`
	PaymentMethod string                   `json:"paymentMethod" validate:"required,oneof=CASH QRIS TRANSFER"`
	Notes         string                   `json:"notes"`
	User          string                   `json:"user"`
	Date          *time.Time               `json:"date"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.ledger.List())
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	tx := Transaction{
		Type:          TransactionType(req.Type),
		TotalAmount:   req.TotalAmount,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes,
		User:          req.User,
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	for _, item := range req.Items {
		tx.Items = append(tx.Items, TransactionItem{
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			PriceAtTransaction: item.PriceAtTransaction,
			CostAtTransaction:  item.CostAtTransaction,
		})
	}

	posted, err := h.ledger.Add(r.Context(), tx)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		case errors.Is(err, catalog.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		case errors.Is(err, store.ErrUnavailable):
			h.logger.Error("post transaction", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "persistence failed, try again")
		default:
			h.logger.Error("post transaction", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}

	h.logger.Info("transaction posted",
		slog.String("id", posted.ID),
		slog.String("type", string(posted.Type)),
		slog.Int("items", len(posted.Items)),
		slog.Int64("total", posted.TotalAmount))
	httpx.JSON(w, http.StatusCreated, posted)
}
