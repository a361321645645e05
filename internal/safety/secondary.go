package safety

import (
	"os"
	"strings"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
)

// FileSecondary reads a roof status cross-check from a plain text file
// written by independent hardware (e.g. another monitor's status log).
//
// The last non-empty line is scanned for the keywords OPEN or CLOSED,
// case-insensitively, OPEN taking precedence. The file's modification
// time reports how stale the reading is.
type FileSecondary struct {
	path   string
	logger *logging.Logger
}

// NewFileSecondary creates a secondary source reader for the given path.
func NewFileSecondary(path string, logger *logging.Logger) *FileSecondary {
	return &FileSecondary{path: path, logger: logger}
}

// Read returns the current cross-check status.
//
// A missing, empty or unparsable file yields a non-Present status with
// a warning logged - never an error. The cross-check is diagnostic
// only, so degrading silently is the correct behaviour.
func (s *FileSecondary) Read() SecondaryStatus {
	info, err := os.Stat(s.path)
	if err != nil {
		s.logger.Warn("secondary source file not found", "path", s.path)
		return SecondaryStatus{}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("secondary source unreadable", "path", s.path, "error", err)
		return SecondaryStatus{}
	}

	line := lastNonEmptyLine(string(data))
	if line == "" {
		s.logger.Warn("secondary source file is empty", "path", s.path)
		return SecondaryStatus{}
	}

	status, ok := parseRoofStatus(line)
	if !ok {
		s.logger.Warn("could not parse status from secondary source", "line", line)
		return SecondaryStatus{}
	}

	return SecondaryStatus{
		Present:   true,
		Status:    status,
		UpdatedAt: info.ModTime().UTC(),
	}
}

// lastNonEmptyLine returns the last line of content that contains
// non-whitespace text, or "".
func lastNonEmptyLine(content string) string {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// parseRoofStatus extracts a roof status keyword from a line.
// OPEN is checked first so "roof is OPEN" parses even when other words
// are present.
func parseRoofStatus(line string) (RoofStatus, bool) {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, string(RoofOpen)):
		return RoofOpen, true
	case strings.Contains(upper, string(RoofClosed)):
		return RoofClosed, true
	default:
		return "", false
	}
}
