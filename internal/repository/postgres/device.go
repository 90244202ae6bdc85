package postgres

import (
	"context"
	"fmt"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	"github.com/exclusivos-baez/storefront-api/pkg/database"
)

// DeviceRepository implements repository.DeviceRepository using PostgreSQL.
type DeviceRepository struct {
	pool database.DBTX
}

// NewDeviceRepository creates a new PostgreSQL-backed device repository.
func NewDeviceRepository(pool database.DBTX) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

// Insert stores one telemetry report. Reports are append-only; the shell
// submits a fresh row on every sign-in.
func (r *DeviceRepository) Insert(ctx context.Context, report *domain.DeviceReport) error {
	query := `
		INSERT INTO device_data (id, user_id, device_model, platform, os_version, manufacturer, is_virtual, battery_level, location_coords, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.DeviceModel,
		report.Platform,
		report.OSVersion,
		report.Manufacturer,
		report.IsVirtual,
		report.BatteryLevel,
		report.LocationCoords,
		report.Language,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert device report: %w", err)
	}

	return nil
}
