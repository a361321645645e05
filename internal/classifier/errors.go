package classifier

import "errors"

// Sentinel errors for classification failures. All of them cause the
// safety engine to fail safe towards CLOSED.
var (
	// ErrNoCommand indicates an empty predictor command line.
	ErrNoCommand = errors.New("classifier: no predictor command configured")

	// ErrNoFolder indicates the monitor folder does not exist or is
	// unreadable.
	ErrNoFolder = errors.New("classifier: cannot read monitor folder")

	// ErrNoFiles indicates the monitor folder contains no PNG captures.
	ErrNoFiles = errors.New("classifier: no PNG files found")

	// ErrPredictorFailed indicates the predictor process failed or
	// timed out.
	ErrPredictorFailed = errors.New("classifier: predictor failed")

	// ErrUnrecognisedOutput indicates the predictor printed something
	// other than OPEN or CLOSED.
	ErrUnrecognisedOutput = errors.New("classifier: unrecognised predictor output")
)
