package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/inventorypro/inventorypro/internal/platform/httpx"
	"github.com/inventorypro/inventorypro/internal/shared"
)

// CacheBumper invalidates derived read-side caches after a successful
// mutation. Invalidation is the caller's duty, not the engine's, so the
// handler owns this hook rather than the service.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Handler wires HTTP endpoints for the stock ledger.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	cache     CacheBumper
	validator *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service, cache CacheBumper) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		cache:     cache,
		validator: validator.New(),
	}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/adjustments", h.handleAdjust)
	r.Post("/bulk", h.handleBulk)
	r.Get("/movements", h.handleMovements)
}

type adjustRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	QuantityChange  int    `json:"quantity_change" validate:"required"`
	CurrentQuantity int    `json:"current_quantity" validate:"gte=0"`
	MovementType    string `json:"movement_type" validate:"required,oneof=adjustment sale purchase return"`
	Notes           string `json:"notes" validate:"max=500"`
	Ref             string `json:"ref" validate:"max=100"`
}

type bulkEntryRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid"`
	CurrentQuantity int    `json:"current_quantity" validate:"gte=0"`
	NewQuantity     int    `json:"new_quantity"`
}

type bulkRequest struct {
	Updates []bulkEntryRequest `json:"updates" validate:"required,min=1,dive"`
	Notes   string             `json:"notes" validate:"max=500"`
}

type bulkFailureResponse struct {
	Detail      string `json:"detail"`
	Committed   int    `json:"committed"`
	FailedIndex int    `json:"failed_index"`
	Skipped     int    `json:"skipped"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id must be a UUID")
		return
	}

	movement, err := h.service.Adjust(r.Context(), AdjustInput{
		ProductID:       productID,
		QuantityChange:  req.QuantityChange,
		CurrentQuantity: req.CurrentQuantity,
		Type:            MovementType(req.MovementType),
		Notes:           req.Notes,
		Actor:           shared.ActorFromContext(r.Context()),
		Ref:             req.Ref,
	})
	if err != nil {
		h.logger.Error("stock adjustment failed",
			slog.String("product_id", req.ProductID),
			slog.Int("quantity_change", req.QuantityChange),
			slog.Any("error", err))
		h.respondLedgerError(w, err)
		return
	}

	h.bumpCache(r.Context())
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	entries := make([]BulkEntry, 0, len(req.Updates))
	for _, u := range req.Updates {
		productID, err := uuid.Parse(u.ProductID)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id must be a UUID")
			return
		}
		// Negative targets are normalised to zero before submission; the
		// engine never sees them. Single adjustments reject instead.
		target := u.NewQuantity
		if target < 0 {
			target = 0
		}
		entries = append(entries, BulkEntry{
			ProductID:       productID,
			CurrentQuantity: u.CurrentQuantity,
			NewQuantity:     target,
		})
	}

	result, err := h.service.BulkAdjust(r.Context(), entries, req.Notes, shared.ActorFromContext(r.Context()))
	if err != nil {
		var bulkErr *BulkError
		if errors.As(err, &bulkErr) {
			h.logger.Error("bulk stock update aborted",
				slog.Int("committed", bulkErr.Committed),
				slog.Int("failed_index", bulkErr.Index),
				slog.Any("error", bulkErr.Err))
			if bulkErr.Committed > 0 {
				h.bumpCache(r.Context())
			}
			httpx.JSON(w, bulkStatus(bulkErr.Err), bulkFailureResponse{
				Detail:      shared.UserSafeMessage(bulkErr.Err),
				Committed:   bulkErr.Committed,
				FailedIndex: bulkErr.Index,
				Skipped:     result.Skipped,
			})
			return
		}
		h.logger.Error("bulk stock update rejected", slog.Any("error", err))
		h.respondLedgerError(w, err)
		return
	}

	if result.Changed > 0 {
		h.bumpCache(r.Context())
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{}
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id must be a UUID")
			return
		}
		filter.ProductID = &id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("list movements failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": movements})
}

func (h *Handler) respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Quantity", "the change would drive stock below zero")
	case errors.Is(err, ErrStaleStock):
		httpx.Problem(w, http.StatusConflict, "Stale Stock", "stock changed concurrently, refresh and retry")
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product does not exist")
	case errors.Is(err, ErrMovementType), errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrNotesTooLong):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", "this reference was already processed")
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func bulkStatus(cause error) int {
	switch {
	case errors.Is(cause, ErrStaleStock):
		return http.StatusConflict
	case errors.Is(cause, ErrProductNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) bumpCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Bump(ctx); err != nil {
		h.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}
