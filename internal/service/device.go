package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	"github.com/exclusivos-baez/storefront-api/internal/event"
	"github.com/exclusivos-baez/storefront-api/internal/repository"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
)

// DeviceReportInput holds one telemetry snapshot submitted by the shell.
type DeviceReportInput struct {
	DeviceModel    string  `json:"deviceModel" validate:"required"`
	Platform       string  `json:"platform" validate:"required"`
	OSVersion      string  `json:"osVersion"`
	Manufacturer   string  `json:"manufacturer"`
	IsVirtual      bool    `json:"isVirtual"`
	BatteryLevel   float64 `json:"batteryLevel" validate:"gte=-1,lte=1"`
	LocationCoords string  `json:"locationCoords"`
	Language       string  `json:"language"`
}

// DeviceService records device telemetry reports.
type DeviceService struct {
	repo     repository.DeviceRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewDeviceService creates a new device service.
func NewDeviceService(repo repository.DeviceRepository, producer *event.Producer, logger *slog.Logger) *DeviceService {
	return &DeviceService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// Report stores one telemetry snapshot for the user. Missing location data is
// recorded with a fixed placeholder rather than an empty string, so reports
// stay distinguishable from partially written rows.
func (s *DeviceService) Report(ctx context.Context, userID string, input DeviceReportInput) (*domain.DeviceReport, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.DeviceModel == "" {
		return nil, apperrors.InvalidInput("device model is required")
	}
	if input.Platform == "" {
		return nil, apperrors.InvalidInput("platform is required")
	}

	coords := input.LocationCoords
	if coords == "" {
		coords = domain.LocationUnavailable
	}

	report := &domain.DeviceReport{
		ID:             uuid.New().String(),
		UserID:         userID,
		DeviceModel:    input.DeviceModel,
		Platform:       input.Platform,
		OSVersion:      input.OSVersion,
		Manufacturer:   input.Manufacturer,
		IsVirtual:      input.IsVirtual,
		BatteryLevel:   input.BatteryLevel,
		LocationCoords: coords,
		Language:       input.Language,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, report); err != nil {
		return nil, fmt.Errorf("store device report: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishDeviceReported(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "publish device.reported failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return report, nil
}
