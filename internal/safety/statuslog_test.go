package safety

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

var statusLinePattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC Roof Status: (OPEN|CLOSED)( \(Sun too high - safety override\))?$`,
)

func TestAppend_LineFormat(t *testing.T) {
	log := NewStatusLog(filepath.Join(t.TempDir(), "roofstatus.txt"))
	when := time.Date(2026, time.August, 15, 22, 30, 45, 0, time.UTC)

	if err := log.Append(when, RoofOpen, false); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	content, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	line := strings.TrimSuffix(string(content), "\n")
	want := "2026-08-15 22:30:45 UTC Roof Status: OPEN"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestAppend_OverrideSuffix(t *testing.T) {
	log := NewStatusLog(filepath.Join(t.TempDir(), "roofstatus.txt"))
	when := time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC)

	if err := log.Append(when, RoofClosed, true); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	content, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	line := strings.TrimSuffix(string(content), "\n")
	want := "2026-08-15 14:00:00 UTC Roof Status: CLOSED (Sun too high - safety override)"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}

func TestAppend_TimestampsAreUTC(t *testing.T) {
	log := NewStatusLog(filepath.Join(t.TempDir(), "roofstatus.txt"))

	// A zoned time must be rendered in UTC.
	zoned := time.Date(2026, time.August, 15, 17, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))

	if err := log.Append(zoned, RoofOpen, false); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	content, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.HasPrefix(string(content), "2026-08-15 22:00:00 UTC") {
		t.Errorf("line = %q, want UTC-rendered timestamp", content)
	}
}

func TestAppend_NeverTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roofstatus.txt")

	// Pre-existing content must survive appends.
	existing := "2026-08-14 20:00:00 UTC Roof Status: CLOSED\n"
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatalf("seeding log: %v", err)
	}

	log := NewStatusLog(path)
	for i := 0; i < 5; i++ {
		when := time.Date(2026, time.August, 15, 20, i, 0, 0, time.UTC)
		if err := log.Append(when, RoofClosed, false); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("log has %d lines, want 6", len(lines))
	}
	if lines[0] != strings.TrimSuffix(existing, "\n") {
		t.Errorf("first line = %q, want original content preserved", lines[0])
	}
	for i, line := range lines {
		if !statusLinePattern.MatchString(line) {
			t.Errorf("line %d = %q does not match the status line format", i, line)
		}
	}
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	log := NewStatusLog(filepath.Join(t.TempDir(), "roofstatus.txt"))
	when := time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC)

	const writers = 10
	done := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			done <- log.Append(when, RoofClosed, false)
		}()
	}
	for i := 0; i < writers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	content, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	if len(lines) != writers {
		t.Fatalf("log has %d lines, want %d", len(lines), writers)
	}
	for i, line := range lines {
		if !statusLinePattern.MatchString(line) {
			t.Errorf("line %d = %q is interleaved or malformed", i, line)
		}
	}
}

func TestAppend_UnwritablePath(t *testing.T) {
	log := NewStatusLog(filepath.Join(t.TempDir(), "missing", "roofstatus.txt"))

	if err := log.Append(time.Now(), RoofClosed, false); err == nil {
		t.Error("Append() to missing directory expected error")
	}
}
