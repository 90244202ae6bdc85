// Package http exposes the storefront over HTTP. The two public shop
// endpoints (product list and checkout) keep the exact wire shapes the mobile
// client was built against; the account endpoints use the data/error envelope.
package http

import (
	"log/slog"
	"net/http"

	"github.com/exclusivos-baez/storefront-api/internal/service"
	"github.com/exclusivos-baez/storefront-api/pkg/httputil"
)

// storefrontError is the error shape of the public shop endpoints.
type storefrontError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ProductHandler handles HTTP requests for the product list.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /api/products. The response is either the full product
// list or an error; a partial list is never returned.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "product list failed",
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, storefrontError{
			Error:   "failed to load products",
			Details: err.Error(),
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"products": products,
	})
}
