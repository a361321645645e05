package safety

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/database"
	_ "github.com/ashdown-obs/roofsentry/migrations" // register embedded migrations
)

// openHistoryDB opens a migrated temporary database.
func openHistoryDB(t *testing.T) *History {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Best effort cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	return NewHistory(db.DB)
}

func TestHistory_RecordAndRecent(t *testing.T) {
	history := openHistoryDB(t)
	ctx := context.Background()

	decision := Decision{
		EvaluatedAt:    time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC),
		Raw:            RawOpen,
		Final:          RoofOpen,
		IsSafe:         true,
		SunAngle:       -23.4,
		SunAngleOK:     true,
		SunSafeForOpen: true,
		Secondary:      SecondaryStatus{Present: true, Status: RoofOpen},
	}

	if err := history.Record(ctx, decision); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, want 1", len(entries))
	}

	got := entries[0].Decision
	if got.Final != RoofOpen || got.Raw != RawOpen {
		t.Errorf("statuses = (%v, %v), want (OPEN, OPEN)", got.Final, got.Raw)
	}
	if !got.IsSafe || !got.SunSafeForOpen {
		t.Errorf("flags = (IsSafe %v, SunSafe %v), want both true", got.IsSafe, got.SunSafeForOpen)
	}
	if !got.SunAngleOK || got.SunAngle != -23.4 {
		t.Errorf("sun angle = (%v, %v), want (-23.4, valid)", got.SunAngle, got.SunAngleOK)
	}
	if !got.Secondary.Present || got.Secondary.Status != RoofOpen {
		t.Errorf("secondary = %+v, want Present OPEN", got.Secondary)
	}
	if !got.EvaluatedAt.Equal(decision.EvaluatedAt) {
		t.Errorf("EvaluatedAt = %v, want %v", got.EvaluatedAt, decision.EvaluatedAt)
	}
}

func TestHistory_NullableFields(t *testing.T) {
	history := openHistoryDB(t)
	ctx := context.Background()

	// Degraded decision: no sun angle, no secondary, with a diagnostic.
	decision := Decision{
		EvaluatedAt: time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC),
		Raw:         RawUnavailable,
		Final:       RoofClosed,
		Diagnostic:  "no PNG files found in monitor folder",
	}

	if err := history.Record(ctx, decision); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := history.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}

	got := entries[0].Decision
	if got.SunAngleOK {
		t.Error("SunAngleOK = true, want false for NULL sun angle")
	}
	if got.Secondary.Present {
		t.Error("Secondary.Present = true, want false for NULL secondary")
	}
	if got.Diagnostic != decision.Diagnostic {
		t.Errorf("Diagnostic = %q, want %q", got.Diagnostic, decision.Diagnostic)
	}
}

func TestHistory_RecentOrdersNewestFirst(t *testing.T) {
	history := openHistoryDB(t)
	ctx := context.Background()

	base := time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		decision := Decision{
			EvaluatedAt: base.Add(time.Duration(i) * time.Minute),
			Raw:         RawClosed,
			Final:       RoofClosed,
		}
		if err := history.Record(ctx, decision); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := history.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries, want 2", len(entries))
	}
	if !entries[0].Decision.EvaluatedAt.After(entries[1].Decision.EvaluatedAt) {
		t.Errorf("entries not newest first: %v then %v",
			entries[0].Decision.EvaluatedAt, entries[1].Decision.EvaluatedAt)
	}
}

func TestHistory_Prune(t *testing.T) {
	history := openHistoryDB(t)
	ctx := context.Background()

	base := time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		decision := Decision{
			EvaluatedAt: base.Add(time.Duration(i) * time.Hour),
			Raw:         RawClosed,
			Final:       RoofClosed,
		}
		if err := history.Record(ctx, decision); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	deleted, err := history.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted %d rows, want 2", deleted)
	}

	entries, err := history.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("%d entries remain, want 3", len(entries))
	}
}
