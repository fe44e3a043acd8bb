package prefs

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inventorypro/inventorypro/internal/platform/httpx"
	"github.com/inventorypro/inventorypro/internal/shared"
)

// Handler serves preference load and save keyed by the acting user.
type Handler struct {
	logger *slog.Logger
	store  *Store
}

func NewHandler(logger *slog.Logger, store *Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers preference routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleGet)
	r.Put("/", h.handlePut)
}

func actorOrDefault(r *http.Request) string {
	if actor := shared.ActorFromContext(r.Context()); actor != "" {
		return actor
	}
	return "anonymous"
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Load(r.Context(), actorOrDefault(r))
	if err != nil {
		h.logger.Error("load preferences", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var p Preferences
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	err := h.store.Save(r.Context(), actorOrDefault(r), p)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, p)
	case errors.Is(err, ErrInvalidPreferences):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("save preferences", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
	}
}
