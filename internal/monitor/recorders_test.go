package monitor

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/database"
	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/safety"
	_ "github.com/ashdown-obs/roofsentry/migrations" // register embedded migrations
)

func TestHistoryRecorder(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	history := safety.NewHistory(db.DB)
	recorder := NewHistoryRecorder(history, 0, logging.Default())

	recorder.Record(ctx, safety.Decision{
		EvaluatedAt: time.Now().UTC(),
		Raw:         safety.RawClosed,
		Final:       safety.RoofClosed,
	})

	entries, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("recorded %d entries, want 1", len(entries))
	}
}

func TestHistoryRecorder_PrunesExpiredEntries(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	history := safety.NewHistory(db.DB)

	// Seed an entry far past any plausible retention window.
	if err := history.Record(ctx, safety.Decision{
		EvaluatedAt: time.Now().UTC().Add(-90 * 24 * time.Hour),
		Raw:         safety.RawOpen,
		Final:       safety.RoofOpen,
	}); err != nil {
		t.Fatalf("seeding old entry: %v", err)
	}

	// The first Record after startup sweeps expired rows.
	recorder := NewHistoryRecorder(history, 30*24*time.Hour, logging.Default())
	recorder.Record(ctx, safety.Decision{
		EvaluatedAt: time.Now().UTC(),
		Raw:         safety.RawClosed,
		Final:       safety.RoofClosed,
	})

	entries, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("retained %d entries, want only the fresh one", len(entries))
	}
	if entries[0].Decision.Final != safety.RoofClosed {
		t.Errorf("retained entry roof = %q, want the fresh decision", entries[0].Decision.Final)
	}
}

func TestHistoryRecorder_ZeroRetentionKeepsEverything(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	history := safety.NewHistory(db.DB)
	if err := history.Record(ctx, safety.Decision{
		EvaluatedAt: time.Now().UTC().Add(-365 * 24 * time.Hour),
		Raw:         safety.RawOpen,
		Final:       safety.RoofOpen,
	}); err != nil {
		t.Fatalf("seeding old entry: %v", err)
	}

	recorder := NewHistoryRecorder(history, 0, logging.Default())
	recorder.Record(ctx, safety.Decision{
		EvaluatedAt: time.Now().UTC(),
		Raw:         safety.RawClosed,
		Final:       safety.RoofClosed,
	})

	entries, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("retained %d entries, want both with pruning disabled", len(entries))
	}
}

func TestBuildStatePayload(t *testing.T) {
	decision := safety.Decision{
		EvaluatedAt: time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC),
		Final:       safety.RoofClosed,
		Overridden:  true,
	}

	data, err := json.Marshal(buildStatePayload(decision))
	if err != nil {
		t.Fatalf("marshalling payload: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded["roof_status"] != "CLOSED" {
		t.Errorf("roof_status = %v, want CLOSED", decoded["roof_status"])
	}
	if decoded["overridden"] != true {
		t.Errorf("overridden = %v, want true", decoded["overridden"])
	}
	if decoded["timestamp"] != "2026-08-15T22:00:00Z" {
		t.Errorf("timestamp = %v, want RFC3339 UTC", decoded["timestamp"])
	}
}

func TestBuildDecisionPayload_OmitsInvalidSunAngle(t *testing.T) {
	decision := safety.Decision{
		EvaluatedAt: time.Now().UTC(),
		Raw:         safety.RawUnavailable,
		Final:       safety.RoofClosed,
		Diagnostic:  "no PNG files found",
	}

	data, err := json.Marshal(buildDecisionPayload(decision))
	if err != nil {
		t.Fatalf("marshalling payload: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if _, present := decoded["sun_angle"]; present {
		t.Error("sun_angle present in payload, want omitted when invalid")
	}
	if decoded["diagnostic"] != "no PNG files found" {
		t.Errorf("diagnostic = %v, want the failure reason", decoded["diagnostic"])
	}
}

func TestBuildDecisionPayload_IncludesSunAngle(t *testing.T) {
	decision := safety.Decision{
		EvaluatedAt:    time.Now().UTC(),
		Raw:            safety.RawOpen,
		Final:          safety.RoofOpen,
		IsSafe:         true,
		SunAngle:       -23.5,
		SunAngleOK:     true,
		SunSafeForOpen: true,
	}

	data, err := json.Marshal(buildDecisionPayload(decision))
	if err != nil {
		t.Fatalf("marshalling payload: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded["sun_angle"] != -23.5 {
		t.Errorf("sun_angle = %v, want -23.5", decoded["sun_angle"])
	}
}
