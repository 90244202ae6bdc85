package http

import (
	"log/slog"
	"net/http"

	"github.com/exclusivos-baez/storefront-api/internal/service"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
	"github.com/exclusivos-baez/storefront-api/pkg/httputil"
	"github.com/exclusivos-baez/storefront-api/pkg/middleware"
	"github.com/exclusivos-baez/storefront-api/pkg/validator"
)

// DeviceHandler handles HTTP requests for device telemetry.
type DeviceHandler struct {
	service *service.DeviceService
	logger  *slog.Logger
}

// NewDeviceHandler creates a new device HTTP handler.
func NewDeviceHandler(svc *service.DeviceService, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{
		service: svc,
		logger:  logger,
	}
}

// Report handles POST /api/v1/devices.
func (h *DeviceHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	var req service.DeviceReportInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	report, err := h.service.Report(r.Context(), userID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: report})
}
