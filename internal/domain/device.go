package domain

import "time"

// LocationUnavailable is recorded when the device denied or lacks geolocation.
const LocationUnavailable = "Not available"

// DeviceReport is one telemetry snapshot collected by the shell after sign-in:
// model, OS, battery, coarse location. Tied to a user account.
type DeviceReport struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	DeviceModel    string    `json:"device_model"`
	Platform       string    `json:"platform"`
	OSVersion      string    `json:"os_version"`
	Manufacturer   string    `json:"manufacturer"`
	IsVirtual      bool      `json:"is_virtual"`
	BatteryLevel   float64   `json:"battery_level"`
	LocationCoords string    `json:"location_coords"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
}
