package astro

import "errors"

// Sentinel errors for astronomical calculations.
var (
	// ErrInvalidCoordinates indicates a latitude or longitude outside the
	// valid range.
	ErrInvalidCoordinates = errors.New("astro: invalid coordinates")
)
