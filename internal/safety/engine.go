package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
)

// Classifier produces a roof status sample from the monitored folder.
// Implemented by the classifier package; tests substitute fakes.
type Classifier interface {
	Classify(ctx context.Context) (Sample, error)
}

// SunAngleFunc returns the solar elevation in degrees for the site at t.
type SunAngleFunc func(t time.Time) (float64, error)

// SecondarySource provides an independent roof status cross-check.
// Read never fails: an unreadable source is simply not Present.
type SecondarySource interface {
	Read() SecondaryStatus
}

// Engine combines the classifier verdict, the sun angle and the
// optional secondary source into one authoritative safety decision.
//
// The engine is deliberately conservative: a missing classifier verdict
// or a failed sun calculation always degrades towards CLOSED/unsafe,
// never towards OPEN.
type Engine struct {
	classifier Classifier
	sunAngle   SunAngleFunc
	secondary  SecondarySource // nil when disabled
	threshold  float64
	statusLog  *StatusLog
	logger     *logging.Logger
}

// NewEngine creates a safety decision engine.
//
// Parameters:
//   - classifier: Image classifier collaborator
//   - sunAngle: Solar elevation provider, already bound to the site
//   - secondary: Optional cross-check source (nil to disable)
//   - threshold: Elevation in degrees below which opening is permitted
//   - statusLog: Append-only roof status log
//   - logger: Structured logger
func NewEngine(classifier Classifier, sunAngle SunAngleFunc, secondary SecondarySource, threshold float64, statusLog *StatusLog, logger *logging.Logger) *Engine {
	return &Engine{
		classifier: classifier,
		sunAngle:   sunAngle,
		secondary:  secondary,
		threshold:  threshold,
		statusLog:  statusLog,
		logger:     logger,
	}
}

// Threshold returns the configured sun elevation threshold in degrees.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Evaluate runs one complete safety evaluation.
//
// The returned Decision is always usable: every internal failure is
// absorbed into a fail-safe CLOSED verdict with the reason in
// Diagnostic. The error return carries the same failure for the caller
// to record as lastError; Evaluate never panics and a non-nil error
// never means the Decision is invalid.
//
// Side effect: the decision is appended to the status log. A failed
// append is reported via the error return but does not change the
// decision itself.
func (e *Engine) Evaluate(ctx context.Context, now time.Time) (Decision, error) {
	decision := Decision{EvaluatedAt: now}
	var failure error

	// Classifier verdict
	sample, err := e.classifier.Classify(ctx)
	if err != nil {
		decision.Raw = RawUnavailable
		decision.Diagnostic = err.Error()
		failure = err
		e.logger.Warn("classification unavailable", "error", err)
	} else {
		decision.Raw = RawClassification(sample.Status)
		decision.FileName = sample.FileName
	}

	// Sun angle. A failed calculation is treated as unsafe for open.
	angle, sunErr := e.sunAngle(now)
	if sunErr != nil {
		decision.SunSafeForOpen = false
		if decision.Diagnostic == "" {
			decision.Diagnostic = fmt.Sprintf("sun angle calculation failed: %v", sunErr)
		}
		failure = errors.Join(failure, sunErr)
		e.logger.Error("sun angle calculation failed", "error", sunErr)
	} else {
		decision.SunAngle = angle
		decision.SunAngleOK = true
		decision.SunSafeForOpen = angle < e.threshold
	}

	// Secondary cross-check (diagnostic only, never part of the verdict)
	if e.secondary != nil {
		decision.Secondary = e.secondary.Read()
	}

	decision.Final, decision.Overridden = resolve(decision.Raw, decision.SunSafeForOpen)
	decision.IsSafe = decision.Final == RoofOpen && decision.SunSafeForOpen

	if decision.Overridden {
		e.logger.Warn("classification suggests OPEN, but sun angle too high - overriding to CLOSED",
			"sun_angle", decision.SunAngle,
			"threshold", e.threshold,
		)
	}

	if err := e.statusLog.Append(now, decision.Final, decision.Overridden); err != nil {
		failure = errors.Join(failure, err)
		e.logger.Error("appending to status log failed", "error", err)
	}

	return decision, failure
}

// resolve applies the fail-safe and sun override rules.
//
// The override is monotonic: it can only force OPEN to CLOSED, never
// the reverse.
func resolve(raw RawClassification, sunSafe bool) (final RoofStatus, overridden bool) {
	switch raw {
	case RawOpen:
		if !sunSafe {
			return RoofClosed, true
		}
		return RoofOpen, false
	case RawClosed:
		return RoofClosed, false
	default:
		// Unavailable: fail safe.
		return RoofClosed, false
	}
}
