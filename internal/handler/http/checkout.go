package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/exclusivos-baez/storefront-api/internal/service"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
	"github.com/exclusivos-baez/storefront-api/pkg/httputil"
)

// SessionIDHeader carries the anonymous cart session, when the client has one.
const SessionIDHeader = "X-Session-ID"

// CheckoutHandler handles HTTP requests for checkout submission.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// checkoutRequest is the JSON request body for a checkout submission.
type checkoutRequest struct {
	CartItems []service.CheckoutItemInput `json:"cartItems"`
}

// checkoutResponse is the success shape of the checkout endpoint.
type checkoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// Create handles POST /api/checkout.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, storefrontError{
			Error: "invalid request body",
		})
		return
	}

	sessionID := r.Header.Get(SessionIDHeader)

	result, err := h.service.Checkout(r.Context(), sessionID, req.CartItems)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, checkoutResponse{CheckoutURL: result.RedirectURL})
}

// writeCheckoutError maps service errors to the public error shape. Client
// mistakes keep their message; upstream failures get a stable message with
// the cause in details.
func (h *CheckoutHandler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "checkout failed",
				slog.String("code", appErr.Code),
				slog.String("error", err.Error()),
			)
			httputil.WriteJSON(w, appErr.Status, storefrontError{
				Error:   "checkout failed",
				Details: appErr.Message,
			})
			return
		}
		httputil.WriteJSON(w, appErr.Status, storefrontError{Error: appErr.Message})
		return
	}

	h.logger.ErrorContext(r.Context(), "checkout failed",
		slog.String("error", err.Error()),
	)
	httputil.WriteJSON(w, http.StatusInternalServerError, storefrontError{
		Error: "checkout failed",
	})
}
