package device

import (
	"github.com/google/uuid"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/config"
)

// Alpaca device constants.
const (
	// Type is the ASCOM device type this server exposes.
	Type = "SafetyMonitor"

	// InterfaceVersion is the ISafetyMonitor interface version.
	InterfaceVersion = 1
)

// Info is the static identity of the exposed safety monitor device.
// It feeds the management API and the common device endpoints.
type Info struct {
	// Name is the device name shown to clients.
	Name string

	// Description is a short human-readable description.
	Description string

	// Number is the zero-based Alpaca device number.
	Number int

	// UniqueID identifies this device instance across restarts.
	UniqueID string

	// DriverVersion is the driver version string.
	DriverVersion string

	// Manufacturer identifies who built the driver.
	Manufacturer string
}

// NewInfo builds device identity from configuration.
// A missing UniqueID gets a random UUID, matching how clients expect
// unconfigured devices to behave.
func NewInfo(cfg config.DeviceConfig) Info {
	uniqueID := cfg.UniqueID
	if uniqueID == "" {
		uniqueID = uuid.NewString()
	}

	return Info{
		Name:          cfg.Name,
		Description:   cfg.Description,
		Number:        cfg.Number,
		UniqueID:      uniqueID,
		DriverVersion: cfg.DriverVersion,
		Manufacturer:  cfg.Manufacturer,
	}
}

// DriverInfo returns the human-readable driver summary reported by the
// driverinfo endpoint.
func (i Info) DriverInfo() string {
	return i.Manufacturer + " " + i.Name + " driver v" + i.DriverVersion
}
