package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/influxdb"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/mqtt"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// pruneEvery is how many recorded decisions pass between retention
// sweeps - roughly daily at the default 30-second cadence.
const pruneEvery = 2880

// HistoryRecorder persists decisions to the SQLite history table and
// periodically prunes entries older than the retention window.
type HistoryRecorder struct {
	history   *safety.History
	retention time.Duration
	logger    *logging.Logger
	recorded  int
}

// NewHistoryRecorder creates a history-backed recorder.
// A zero retention disables pruning.
func NewHistoryRecorder(history *safety.History, retention time.Duration, logger *logging.Logger) *HistoryRecorder {
	return &HistoryRecorder{history: history, retention: retention, logger: logger}
}

// Record inserts the decision; failures are logged and dropped. The
// first insert and every pruneEvery-th after it also sweep expired
// rows, so a restart picks up retention without a separate scheduler.
func (r *HistoryRecorder) Record(ctx context.Context, decision safety.Decision) {
	if err := r.history.Record(ctx, decision); err != nil {
		r.logger.Warn("recording decision history failed", "error", err)
	}

	if r.retention <= 0 {
		return
	}
	if r.recorded%pruneEvery == 0 {
		r.prune(ctx)
	}
	r.recorded++
}

func (r *HistoryRecorder) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.retention)
	pruned, err := r.history.Prune(ctx, cutoff)
	if err != nil {
		r.logger.Warn("pruning decision history failed", "error", err)
		return
	}
	if pruned > 0 {
		r.logger.Info("pruned decision history", "removed", pruned, "older_than", cutoff.Format(time.RFC3339))
	}
}

// InfluxRecorder writes per-cycle telemetry to InfluxDB.
type InfluxRecorder struct {
	client *influxdb.Client
	siteID string
}

// NewInfluxRecorder creates an InfluxDB-backed recorder.
func NewInfluxRecorder(client *influxdb.Client, siteID string) *InfluxRecorder {
	return &InfluxRecorder{client: client, siteID: siteID}
}

// Record writes the safety state and sun angle points.
// The influxdb client batches asynchronously and absorbs write errors.
func (r *InfluxRecorder) Record(_ context.Context, decision safety.Decision) {
	r.client.WriteSafetyState(r.siteID, string(decision.Final), decision.IsSafe, decision.Overridden)
	if decision.SunAngleOK {
		r.client.WriteSunAngle(r.siteID, decision.SunAngle)
	}
}

// RecordCycle writes the evaluation timing point.
func (r *InfluxRecorder) RecordCycle(_ context.Context, duration time.Duration, success bool) {
	r.client.WriteCycleMetric(r.siteID, duration.Seconds()*1000, success)
}

// MQTTRecorder publishes the safety state to the observatory broker.
type MQTTRecorder struct {
	client *mqtt.Client
	logger *logging.Logger
}

// NewMQTTRecorder creates an MQTT-backed recorder.
func NewMQTTRecorder(client *mqtt.Client, logger *logging.Logger) *MQTTRecorder {
	return &MQTTRecorder{client: client, logger: logger}
}

// statePayload is the retained roofsentry/safety/state message body.
type statePayload struct {
	IsSafe     bool   `json:"is_safe"`
	RoofStatus string `json:"roof_status"`
	Overridden bool   `json:"overridden"`
	Timestamp  string `json:"timestamp"`
}

// decisionPayload is the roofsentry/safety/decision event body.
type decisionPayload struct {
	IsSafe         bool     `json:"is_safe"`
	RoofStatus     string   `json:"roof_status"`
	RawStatus      string   `json:"raw_status"`
	SunAngle       *float64 `json:"sun_angle,omitempty"`
	SunSafeForOpen bool     `json:"sun_safe_for_open"`
	Overridden     bool     `json:"overridden"`
	FileName       string   `json:"file_name,omitempty"`
	Diagnostic     string   `json:"diagnostic,omitempty"`
	Timestamp      string   `json:"timestamp"`
}

// Record publishes a retained state message and a decision event.
// Publish failures are logged and dropped - a broker outage must never
// stall the poll loop.
func (r *MQTTRecorder) Record(_ context.Context, decision safety.Decision) {
	topics := mqtt.Topics{}

	state, err := json.Marshal(buildStatePayload(decision))
	if err == nil {
		if err := r.client.PublishRetained(topics.SafetyState(), state); err != nil {
			r.logger.Warn("publishing safety state failed", "error", err)
		}
	}

	event, err := json.Marshal(buildDecisionPayload(decision))
	if err == nil {
		if err := r.client.PublishEvent(topics.SafetyDecision(), event); err != nil {
			r.logger.Warn("publishing decision event failed", "error", err)
		}
	}
}

func buildStatePayload(decision safety.Decision) statePayload {
	return statePayload{
		IsSafe:     decision.IsSafe,
		RoofStatus: string(decision.Final),
		Overridden: decision.Overridden,
		Timestamp:  decision.EvaluatedAt.UTC().Format(time.RFC3339),
	}
}

func buildDecisionPayload(decision safety.Decision) decisionPayload {
	payload := decisionPayload{
		IsSafe:         decision.IsSafe,
		RoofStatus:     string(decision.Final),
		RawStatus:      string(decision.Raw),
		SunSafeForOpen: decision.SunSafeForOpen,
		Overridden:     decision.Overridden,
		FileName:       decision.FileName,
		Diagnostic:     decision.Diagnostic,
		Timestamp:      decision.EvaluatedAt.UTC().Format(time.RFC3339),
	}
	if decision.SunAngleOK {
		angle := decision.SunAngle
		payload.SunAngle = &angle
	}
	return payload
}
