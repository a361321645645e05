package astro

import (
	"fmt"
	"time"
)

// Search bounds for window calculation.
const (
	// defaultSearchStep is the step used when none is configured.
	defaultSearchStep = 10 * time.Minute

	// maxSearchStep caps the step so crossings are never skipped by more
	// than half an hour.
	maxSearchStep = 30 * time.Minute

	// defaultSearchHorizon bounds the forward search so the calculation
	// always terminates, even in polar conditions.
	defaultSearchHorizon = 48 * time.Hour
)

// WindowKind classifies an observation window result.
type WindowKind int

const (
	// WindowCurrent means the observer is inside a safe window right now.
	WindowCurrent WindowKind = iota

	// WindowNext means a safe window starts in the future.
	WindowNext

	// WindowAlwaysSafe means the sun stays below the threshold for the
	// whole search horizon (e.g. polar winter).
	WindowAlwaysSafe

	// WindowNeverSafe means the sun stays above the threshold for the
	// whole search horizon (e.g. polar summer).
	WindowNeverSafe
)

// String returns a human-readable name for the window kind.
func (k WindowKind) String() string {
	switch k {
	case WindowCurrent:
		return "current"
	case WindowNext:
		return "next"
	case WindowAlwaysSafe:
		return "always_safe"
	case WindowNeverSafe:
		return "never_safe"
	default:
		return "unknown"
	}
}

// Window describes when the sun is, or will next be, below the
// configured elevation threshold.
//
// For WindowCurrent, Start is the evaluation time and End is when the
// sun next rises above the threshold. For WindowNext, Start and End
// bound the upcoming safe period. For the sentinel kinds Start and End
// are zero.
type Window struct {
	Kind  WindowKind
	Start time.Time
	End   time.Time
}

// ElevationFunc returns the solar elevation in degrees for an observer.
// Elevation satisfies this signature; tests substitute synthetic curves.
type ElevationFunc func(latitude, longitude float64, t time.Time) (float64, error)

// Calculator computes observation windows for a fixed site and
// threshold by time-stepped search over an elevation function.
//
// Results are derived purely from location, threshold and the
// evaluation time; nothing is cached or persisted.
type Calculator struct {
	// Latitude and Longitude locate the observer in degrees.
	Latitude  float64
	Longitude float64

	// Threshold is the elevation below which conditions are safe.
	// Strict comparison: elevation exactly at the threshold is unsafe.
	Threshold float64

	// Step is the search increment. Zero uses the default; values above
	// 30 minutes are clamped to 30 minutes.
	Step time.Duration

	// Horizon bounds the forward search. Zero uses 48 hours.
	Horizon time.Duration

	// Elevation supplies solar elevations. Nil uses Elevation.
	Elevation ElevationFunc
}

// Compute determines the observation window relative to now.
//
// The search walks forward from now in Step increments out to Horizon:
//
//   - If the sun is already below the threshold, the result is a
//     WindowCurrent ending at the first above-threshold sample, or
//     WindowAlwaysSafe if no such sample exists within the horizon.
//   - Otherwise the search looks for the first below-threshold sample
//     (the start of the next window) and then the following
//     above-threshold sample (its end). No below-threshold sample within
//     the horizon yields WindowNeverSafe. A window that is still open at
//     the horizon is truncated to the horizon bound.
//
// Parameters:
//   - now: The evaluation instant
//
// Returns:
//   - Window: The computed window or sentinel
//   - error: If the elevation function fails
func (c *Calculator) Compute(now time.Time) (Window, error) {
	step := c.Step
	if step <= 0 {
		step = defaultSearchStep
	}
	if step > maxSearchStep {
		step = maxSearchStep
	}

	horizon := c.Horizon
	if horizon <= 0 {
		horizon = defaultSearchHorizon
	}

	elevationAt := c.Elevation
	if elevationAt == nil {
		elevationAt = Elevation
	}

	current, err := elevationAt(c.Latitude, c.Longitude, now)
	if err != nil {
		return Window{}, fmt.Errorf("computing current elevation: %w", err)
	}

	deadline := now.Add(horizon)

	if current < c.Threshold {
		// Inside a safe window: find where it ends.
		end, found, err := c.searchCrossing(elevationAt, now.Add(step), deadline, step, false)
		if err != nil {
			return Window{}, err
		}
		if !found {
			return Window{Kind: WindowAlwaysSafe}, nil
		}
		return Window{Kind: WindowCurrent, Start: now, End: end}, nil
	}

	// Unsafe now: find the start of the next window.
	start, found, err := c.searchCrossing(elevationAt, now.Add(step), deadline, step, true)
	if err != nil {
		return Window{}, err
	}
	if !found {
		return Window{Kind: WindowNeverSafe}, nil
	}

	// Then find where that window ends.
	end, found, err := c.searchCrossing(elevationAt, start.Add(step), deadline, step, false)
	if err != nil {
		return Window{}, err
	}
	if !found {
		// Window extends past the search horizon; truncate.
		end = deadline
	}

	return Window{Kind: WindowNext, Start: start, End: end}, nil
}

// searchCrossing walks from 'from' to 'until' in 'step' increments and
// returns the first sample below the threshold (wantBelow=true) or at or
// above it (wantBelow=false).
func (c *Calculator) searchCrossing(elevationAt ElevationFunc, from, until time.Time, step time.Duration, wantBelow bool) (time.Time, bool, error) {
	for t := from; !t.After(until); t = t.Add(step) {
		elevation, err := elevationAt(c.Latitude, c.Longitude, t)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("computing elevation at %s: %w", t.Format(time.RFC3339), err)
		}

		below := elevation < c.Threshold
		if below == wantBelow {
			return t, true, nil
		}
	}
	return time.Time{}, false, nil
}
