package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exclusivos-baez/storefront-api/internal/service"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
	"github.com/exclusivos-baez/storefront-api/pkg/httputil"
	"github.com/exclusivos-baez/storefront-api/pkg/middleware"
	"github.com/exclusivos-baez/storefront-api/pkg/pagination"
)

// DropHandler handles HTTP requests for drop announcements.
type DropHandler struct {
	service *service.DropService
	logger  *slog.Logger
}

// NewDropHandler creates a new drop HTTP handler.
func NewDropHandler(svc *service.DropService, logger *slog.Logger) *DropHandler {
	return &DropHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/v1/drops.
func (h *DropHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	drops, err := h.service.ListUpcoming(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: drops})
}

// Subscribe handles POST /api/v1/drops/{slug}/subscribe.
func (h *DropHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	slug := chi.URLParam(r, "slug")

	sub, err := h.service.Subscribe(r.Context(), slug, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sub})
}
