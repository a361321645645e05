package monitor

import (
	"context"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/device"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// Evaluator runs one safety evaluation. Satisfied by *safety.Engine.
type Evaluator interface {
	Evaluate(ctx context.Context, now time.Time) (safety.Decision, error)
}

// Recorder receives each completed decision for telemetry or history.
// Recording is best-effort: implementations absorb their own failures
// and must never influence the decision path.
type Recorder interface {
	Record(ctx context.Context, decision safety.Decision)
}

// CycleRecorder is an optional extension for recorders that also want
// per-cycle timing telemetry. Success means the evaluation completed
// without error, not that the verdict was safe.
type CycleRecorder interface {
	RecordCycle(ctx context.Context, duration time.Duration, success bool)
}

// Poller drives the safety engine on a fixed cadence and publishes
// results into the shared device state.
//
// The cadence is sleep-based, not a fixed period: a slow classification
// simply delays the next cycle. A single failed cycle never terminates
// the poller - failures are recorded in the device state and the next
// cycle starts fresh.
type Poller struct {
	state     *device.State
	engine    Evaluator
	interval  time.Duration
	recorders []Recorder
	logger    *logging.Logger
}

// New creates a poller.
//
// Parameters:
//   - state: Shared device state to publish into
//   - engine: Safety evaluator
//   - interval: Time between the start of consecutive cycles
//   - recorders: Best-effort decision sinks (history, telemetry, MQTT)
//   - logger: Structured logger
func New(state *device.State, engine Evaluator, interval time.Duration, recorders []Recorder, logger *logging.Logger) *Poller {
	return &Poller{
		state:     state,
		engine:    engine,
		interval:  interval,
		recorders: recorders,
		logger:    logger,
	}
}

// Run executes poll cycles until the context is cancelled.
//
// The first cycle runs immediately; shutdown latency is bounded by the
// interval because cancellation is checked during every sleep.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller started", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.cycle(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
		}
	}
}

// cycle runs one evaluation and publishes the result.
func (p *Poller) cycle(ctx context.Context) {
	now := time.Now().UTC()

	// Fail open while no client is monitoring: a disconnected device
	// must never strand an observatory on a stale unsafe verdict.
	if !p.state.Connected() {
		p.state.ForceSafe(now)
		return
	}

	started := time.Now()
	decision, err := p.engine.Evaluate(ctx, now)
	elapsed := time.Since(started)
	if err != nil {
		p.logger.Error("evaluation cycle degraded", "error", err)
	}
	p.state.ApplyDecision(decision, err)

	p.logger.Debug("safety status updated",
		"is_safe", decision.IsSafe,
		"roof", string(decision.Final),
		"sun_safe", decision.SunSafeForOpen,
	)

	for _, recorder := range p.recorders {
		recorder.Record(ctx, decision)
		if cr, ok := recorder.(CycleRecorder); ok {
			cr.RecordCycle(ctx, elapsed, err == nil)
		}
	}
}
