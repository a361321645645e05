package safety

import "time"

// RoofStatus is the roof position as reported to consumers.
type RoofStatus string

// Roof status values. These appear verbatim in the status log and the
// Alpaca status endpoint, so they are part of the external contract.
const (
	RoofOpen   RoofStatus = "OPEN"
	RoofClosed RoofStatus = "CLOSED"
)

// RawClassification is the classifier's verdict before any override.
type RawClassification string

// Raw classification values.
const (
	RawOpen   RawClassification = "OPEN"
	RawClosed RawClassification = "CLOSED"

	// RawUnavailable means the classifier could not produce a verdict
	// (no monitored folder, no images, predictor failure).
	RawUnavailable RawClassification = "unavailable"
)

// Sample is one classification of the newest image in the monitored
// folder. Produced once per poll cycle; immutable; never persisted.
type Sample struct {
	// FileName is the image that was classified.
	FileName string

	// Status is the classifier's verdict for that image.
	Status RoofStatus

	// ObservedAt is when the classification ran.
	ObservedAt time.Time
}

// SecondaryStatus is the verdict of the optional cross-check source
// (typically a status file written by independent roof hardware).
type SecondaryStatus struct {
	// Present is false when the source is disabled, missing, empty or
	// unparsable. The other fields are meaningless in that case.
	Present bool

	// Status is the roof status parsed from the source.
	Status RoofStatus

	// UpdatedAt is the source file's modification time.
	UpdatedAt time.Time
}

// Decision is the complete outcome of one safety evaluation.
//
// Invariant: Final is RoofClosed whenever Raw is RawOpen and
// SunSafeForOpen is false - the sun override only ever demotes OPEN to
// CLOSED, never the reverse. When Raw is RawUnavailable, Final defaults
// to RoofClosed (fail-safe).
type Decision struct {
	// Raw is the classifier verdict before any override.
	Raw RawClassification

	// FileName is the image behind the verdict (empty when unavailable).
	FileName string

	// SunAngle is the solar elevation in degrees. Only meaningful when
	// SunAngleOK is true.
	SunAngle   float64
	SunAngleOK bool

	// SunSafeForOpen is true iff the sun is strictly below the
	// configured threshold. A failed calculation counts as unsafe.
	SunSafeForOpen bool

	// Secondary is the cross-check source's verdict, if available.
	Secondary SecondaryStatus

	// Final is the roof status after the sun override.
	Final RoofStatus

	// Overridden is true when an OPEN classification was demoted to
	// CLOSED because the sun was too high.
	Overridden bool

	// IsSafe is the authoritative verdict: safe to image iff the roof
	// is open and sun conditions permit it.
	IsSafe bool

	// Diagnostic describes why the decision degraded (classifier
	// unavailable, sun calculation failure). Empty on a clean cycle.
	Diagnostic string

	// EvaluatedAt is when the decision was made.
	EvaluatedAt time.Time
}
