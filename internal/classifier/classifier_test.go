package classifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/infrastructure/logging"
	"github.com/ashdown-obs/roofsentry/internal/safety"
)

// writePredictor creates an executable script that prints the given
// output and exits with the given code.
func writePredictor(t *testing.T, output string, exitCode int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "predictor.sh")
	script := "#!/bin/sh\nprintf '%s\\n' \"" + output + "\"\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("writing predictor script: %v", err)
	}
	return path
}

// writeImage creates a dummy capture with a pinned modification time.
func writeImage(t *testing.T, folder, name string, mtime time.Time) {
	t.Helper()

	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, []byte("fake png"), 0644); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mtime: %v", err)
	}
}

func TestNew_EmptyCommand(t *testing.T) {
	_, err := New(t.TempDir(), "   ", 0, logging.Default())
	if !errors.Is(err, ErrNoCommand) {
		t.Errorf("New() error = %v, want ErrNoCommand", err)
	}
}

func TestClassify_Open(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "capture.png", time.Now())

	c, err := New(folder, writePredictor(t, "OPEN", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sample, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if sample.Status != safety.RoofOpen {
		t.Errorf("Status = %v, want OPEN", sample.Status)
	}
	if sample.FileName != "capture.png" {
		t.Errorf("FileName = %q, want capture.png", sample.FileName)
	}
	if sample.ObservedAt.IsZero() {
		t.Error("ObservedAt is zero")
	}
}

func TestClassify_PicksNewestByModTime(t *testing.T) {
	folder := t.TempDir()
	base := time.Now().Add(-time.Hour)

	// Lexically later name but older mtime must lose.
	writeImage(t, folder, "zzz-old.png", base)
	writeImage(t, folder, "aaa-new.png", base.Add(30*time.Minute))

	c, err := New(folder, writePredictor(t, "CLOSED", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sample, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if sample.FileName != "aaa-new.png" {
		t.Errorf("FileName = %q, want aaa-new.png (newest by mtime)", sample.FileName)
	}
}

func TestClassify_IgnoresNonPNG(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "capture.fits", time.Now())
	writeImage(t, folder, "notes.txt", time.Now())

	c, err := New(folder, writePredictor(t, "OPEN", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Classify(context.Background())
	if !errors.Is(err, ErrNoFiles) {
		t.Errorf("Classify() error = %v, want ErrNoFiles", err)
	}
}

func TestClassify_CaseInsensitiveExtension(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "CAPTURE.PNG", time.Now())

	c, err := New(folder, writePredictor(t, "OPEN", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sample, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if sample.FileName != "CAPTURE.PNG" {
		t.Errorf("FileName = %q, want CAPTURE.PNG", sample.FileName)
	}
}

func TestClassify_MissingFolder(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "absent"), writePredictor(t, "OPEN", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Classify(context.Background())
	if !errors.Is(err, ErrNoFolder) {
		t.Errorf("Classify() error = %v, want ErrNoFolder", err)
	}
}

func TestClassify_EmptyFolder(t *testing.T) {
	c, err := New(t.TempDir(), writePredictor(t, "OPEN", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Classify(context.Background())
	if !errors.Is(err, ErrNoFiles) {
		t.Errorf("Classify() error = %v, want ErrNoFiles", err)
	}
}

func TestClassify_PredictorExitsNonZero(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "capture.png", time.Now())

	c, err := New(folder, writePredictor(t, "boom", 1), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Classify(context.Background())
	if !errors.Is(err, ErrPredictorFailed) {
		t.Errorf("Classify() error = %v, want ErrPredictorFailed", err)
	}
}

func TestClassify_UnrecognisedOutput(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "capture.png", time.Now())

	c, err := New(folder, writePredictor(t, "MAYBE", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = c.Classify(context.Background())
	if !errors.Is(err, ErrUnrecognisedOutput) {
		t.Errorf("Classify() error = %v, want ErrUnrecognisedOutput", err)
	}
}

func TestClassify_LowercaseVerdictAccepted(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "capture.png", time.Now())

	c, err := New(folder, writePredictor(t, "closed", 0), 0, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sample, err := c.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if sample.Status != safety.RoofClosed {
		t.Errorf("Status = %v, want CLOSED", sample.Status)
	}
}

func TestClassify_ContextCancelled(t *testing.T) {
	folder := t.TempDir()
	writeImage(t, folder, "capture.png", time.Now())

	// A predictor that sleeps longer than the context allows.
	path := filepath.Join(t.TempDir(), "slow.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nsleep 10\necho OPEN\n"), 0755); err != nil {
		t.Fatalf("writing predictor script: %v", err)
	}

	c, err := New(folder, path, time.Hour, logging.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = c.Classify(ctx)
	if !errors.Is(err, ErrPredictorFailed) {
		t.Errorf("Classify() error = %v, want ErrPredictorFailed", err)
	}
}
