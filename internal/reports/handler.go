package reports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inventorypro/inventorypro/internal/platform/httpx"
	"github.com/inventorypro/inventorypro/internal/shared"
)

// Handler serves the dashboard aggregates as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats", h.handleStats)
	r.Get("/categories", h.handleCategories)
	r.Get("/top-products", h.handleTopProducts)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("report stats", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Error("report categories", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
		return
	}
	if groups == nil {
		groups = []CategoryGroup{}
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		h.logger.Error("report top products", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
		return
	}
	if items == nil {
		items = []TopProduct{}
	}
	httpx.JSON(w, http.StatusOK, items)
}
