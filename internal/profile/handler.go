package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warung-pos/warung-pos/internal/platform/httpx"
	"github.com/warung-pos/warung-pos/internal/platform/store"
)

// Handler wires HTTP endpoints for the business profile.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a profile handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleGet)
	r.Put("/", h.handlePut)
}

type profileRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Owner   string `json:"owner"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context())
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "business profile not configured")
		return
	}
	if err != nil {
		h.respondError(w, "load profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p := Profile{Name: req.Name, Address: req.Address, Phone: req.Phone, Owner: req.Owner}
	if err := h.service.Save(r.Context(), p); err != nil {
		h.respondError(w, "save profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	if errors.Is(err, store.ErrUnavailable) {
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "persistence failed, try again")
		return
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
