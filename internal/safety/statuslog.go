package safety

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Status log file constants.
const (
	// statusLogPermissions is the permission mode for the status log file.
	statusLogPermissions = 0644

	// statusLogTimeFormat matches the line format downstream consumers
	// already parse. Do not change it.
	statusLogTimeFormat = "2006-01-02 15:04:05"

	// overrideSuffix is appended when the sun override forced CLOSED.
	overrideSuffix = " (Sun too high - safety override)"
)

// StatusLog is the append-only roof status record.
//
// This file is the durable system-of-record for downstream consumers
// (it doubles as the secondary source for other monitors). Lines are
// only ever appended - the file is never truncated or reordered.
type StatusLog struct {
	path string
	mu   sync.Mutex
}

// NewStatusLog creates a status log writer for the given path.
// The file is created on first append.
func NewStatusLog(path string) *StatusLog {
	return &StatusLog{path: path}
}

// Path returns the filesystem path of the status log.
func (l *StatusLog) Path() string {
	return l.path
}

// Append writes one status line:
//
//	<UTC timestamp> Roof Status: <OPEN|CLOSED>[ (Sun too high - safety override)]
//
// The file is opened in append mode for every write so external log
// rotation cannot lose lines to a stale handle.
//
// Parameters:
//   - now: Decision time (formatted in UTC)
//   - status: Final roof status
//   - overridden: Whether the sun override forced CLOSED
//
// Returns:
//   - error: If the file cannot be opened or written
func (l *StatusLog) Append(now time.Time, status RoofStatus, overridden bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	suffix := ""
	if overridden {
		suffix = overrideSuffix
	}
	line := fmt.Sprintf("%s UTC Roof Status: %s%s\n",
		now.UTC().Format(statusLogTimeFormat), status, suffix)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, statusLogPermissions)
	if err != nil {
		return fmt.Errorf("opening status log: %w", err)
	}
	defer f.Close() //nolint:errcheck // Write error below is the one that matters

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending to status log: %w", err)
	}

	return nil
}
