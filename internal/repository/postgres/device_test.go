package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
)

func sampleDeviceReport() *domain.DeviceReport {
	return &domain.DeviceReport{
		ID:             "dev-1",
		UserID:         "u-1234",
		DeviceModel:    "Pixel 8",
		Platform:       "android",
		OSVersion:      "14",
		Manufacturer:   "Google",
		IsVirtual:      false,
		BatteryLevel:   0.87,
		LocationCoords: "19.4326,-99.1332",
		Language:       "es-MX",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestDeviceRepository_Insert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewDeviceRepository(mock)

	r := sampleDeviceReport()

	mock.ExpectExec("INSERT INTO device_data").
		WithArgs(
			r.ID, r.UserID, r.DeviceModel, r.Platform, r.OSVersion,
			r.Manufacturer, r.IsVirtual, r.BatteryLevel, r.LocationCoords,
			r.Language, r.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepository_Insert_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewDeviceRepository(mock)

	r := sampleDeviceReport()

	mock.ExpectExec("INSERT INTO device_data").
		WithArgs(
			r.ID, r.UserID, r.DeviceModel, r.Platform, r.OSVersion,
			r.Manufacturer, r.IsVirtual, r.BatteryLevel, r.LocationCoords,
			r.Language, r.CreatedAt,
		).
		WillReturnError(errors.New("connection refused"))

	err = repo.Insert(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert device report")
	assert.NoError(t, mock.ExpectationsWereMet())
}
