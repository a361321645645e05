package classifier

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// defaultTimeout bounds a single predictor invocation when no timeout
// is configured. Classification must stay well inside the poll cadence.
const defaultTimeout = 20 * time.Second

// Command classifies the newest image in the monitored folder by
// invoking an external predictor executable.
//
// The predictor is a black box: it receives the image path as its final
// argument and prints OPEN or CLOSED on stdout. Anything else counts as
// a failed classification.
type Command struct {
	folder  string
	argv    []string
	timeout time.Duration
	logger  *logging.Logger
}

// New creates a command-backed classifier.
//
// Parameters:
//   - folder: Directory to watch for .png captures
//   - command: Predictor command line; split on whitespace, the image
//     path is appended as the final argument
//   - timeout: Per-invocation bound (zero uses the default)
//   - logger: Structured logger
//
// Returns:
//   - *Command: Classifier ready for use
//   - error: If the command line is empty
func New(folder, command string, timeout time.Duration, logger *logging.Logger) (*Command, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Command{
		folder:  folder,
		argv:    argv,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Classify finds the newest .png in the monitored folder and runs the
// predictor against it.
//
// Parameters:
//   - ctx: Context for cancellation; the predictor is killed when it
//     expires
//
// Returns:
//   - safety.Sample: The file name and verdict
//   - error: ErrNoFolder, ErrNoFiles, or a predictor failure
func (c *Command) Classify(ctx context.Context) (safety.Sample, error) {
	latest, err := c.newestImage()
	if err != nil {
		return safety.Sample{}, err
	}

	status, err := c.predict(ctx, filepath.Join(c.folder, latest))
	if err != nil {
		return safety.Sample{}, err
	}

	return safety.Sample{
		FileName:   latest,
		Status:     status,
		ObservedAt: time.Now().UTC(),
	}, nil
}

// newestImage returns the name of the most recently modified .png in
// the monitored folder.
func (c *Command) newestImage() (string, error) {
	entries, err := os.ReadDir(c.folder)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoFolder, c.folder)
	}

	var (
		latest    string
		latestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = entry.Name()
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoFiles, c.folder)
	}
	return latest, nil
}

// predict runs the external predictor and parses its verdict.
func (c *Command) predict(ctx context.Context, imagePath string) (safety.RoofStatus, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.argv[1:]...), imagePath)
	cmd := exec.CommandContext(runCtx, c.argv[0], args...)

	output, err := cmd.Output()
	if err != nil {
		if runCtx.Err() != nil {
			return "", fmt.Errorf("%w: timed out after %v", ErrPredictorFailed, c.timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrPredictorFailed, err)
	}

	verdict := strings.ToUpper(strings.TrimSpace(string(output)))
	switch verdict {
	case string(safety.RoofOpen):
		return safety.RoofOpen, nil
	case string(safety.RoofClosed):
		return safety.RoofClosed, nil
	default:
		c.logger.Warn("predictor produced unrecognised output", "output", verdict)
		return "", fmt.Errorf("%w: %q", ErrUnrecognisedOutput, verdict)
	}
}
