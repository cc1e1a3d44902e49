package simulation

import "errors"

// Domain errors for the simulation package.
var (
	// ErrUnknownMode is returned when a mode name is not onoff, wattage or stateless.
	ErrUnknownMode = errors.New("simulation: unknown mode")

	// ErrDeviceNotFound is returned when a device ID is not in the catalogue.
	ErrDeviceNotFound = errors.New("simulation: device not found")

	// ErrInvalidInterval is returned when a stateful mode is configured without a positive tick interval.
	ErrInvalidInterval = errors.New("simulation: tick interval must be positive")
)
