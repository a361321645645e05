package safety

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
)

// writeSecondaryFile creates a secondary source file with the given content.
func writeSecondaryFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roofstatus.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing secondary file: %v", err)
	}
	return path
}

func TestRead_MissingFile(t *testing.T) {
	source := NewFileSecondary(filepath.Join(t.TempDir(), "absent.txt"), logging.Default())

	status := source.Read()
	if status.Present {
		t.Error("Present = true for missing file, want false")
	}
}

func TestRead_EmptyFile(t *testing.T) {
	path := writeSecondaryFile(t, "")
	source := NewFileSecondary(path, logging.Default())

	status := source.Read()
	if status.Present {
		t.Error("Present = true for empty file, want false")
	}
}

func TestRead_ParsesLastLine(t *testing.T) {
	content := "2026-08-14 20:00:00 UTC Roof Status: OPEN\n" +
		"2026-08-15 06:00:00 UTC Roof Status: CLOSED\n"
	path := writeSecondaryFile(t, content)
	source := NewFileSecondary(path, logging.Default())

	status := source.Read()
	if !status.Present {
		t.Fatal("Present = false, want true")
	}
	if status.Status != RoofClosed {
		t.Errorf("Status = %v, want CLOSED (last line wins)", status.Status)
	}
	if status.UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero, want file modification time")
	}
}

func TestRead_CaseInsensitive(t *testing.T) {
	path := writeSecondaryFile(t, "roof is currently open\n")
	source := NewFileSecondary(path, logging.Default())

	status := source.Read()
	if !status.Present || status.Status != RoofOpen {
		t.Errorf("status = %+v, want Present OPEN", status)
	}
}

func TestRead_TrailingBlankLinesIgnored(t *testing.T) {
	path := writeSecondaryFile(t, "Roof Status: OPEN\n\n\n")
	source := NewFileSecondary(path, logging.Default())

	status := source.Read()
	if !status.Present || status.Status != RoofOpen {
		t.Errorf("status = %+v, want Present OPEN", status)
	}
}

func TestRead_UnparsableContent(t *testing.T) {
	path := writeSecondaryFile(t, "no roof keywords here\n")
	source := NewFileSecondary(path, logging.Default())

	status := source.Read()
	if status.Present {
		t.Errorf("Present = true for unparsable content, want false")
	}
}

func TestRead_ModificationTimeIsUTC(t *testing.T) {
	path := writeSecondaryFile(t, "Roof Status: CLOSED\n")

	// Pin the mtime so the assertion is deterministic.
	mtime := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mtime: %v", err)
	}

	source := NewFileSecondary(path, logging.Default())
	status := source.Read()
	if !status.Present {
		t.Fatal("Present = false, want true")
	}
	if !status.UpdatedAt.Equal(mtime) {
		t.Errorf("UpdatedAt = %v, want %v", status.UpdatedAt, mtime)
	}
	if status.UpdatedAt.Location() != time.UTC {
		t.Errorf("UpdatedAt location = %v, want UTC", status.UpdatedAt.Location())
	}
}

func TestParseRoofStatus(t *testing.T) {
	tests := []struct {
		line   string
		want   RoofStatus
		wantOK bool
	}{
		{"Roof Status: OPEN", RoofOpen, true},
		{"Roof Status: CLOSED", RoofClosed, true},
		{"roof status: closed", RoofClosed, true},
		{"was CLOSED, now OPEN", RoofOpen, true},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseRoofStatus(tt.line)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseRoofStatus(%q) = (%v, %v), want (%v, %v)", tt.line, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
