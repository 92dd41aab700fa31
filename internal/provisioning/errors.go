package provisioning

import (
	"errors"
	"fmt"
)

// ErrNoImage is wrapped by the ResolutionError returned when no image matches
// the configured OS, version and architecture.
var ErrNoImage = errors.New("no matching image")

// ResolutionError is a fatal failure to derive the environment before any
// launch attempt.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolution failed: %s: %v", e.Reason, e.Err)
	}
	return "resolution failed: " + e.Reason
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// AbortError is returned by Scheduler.Run when an attempt is classified as
// not retryable.
type AbortError struct {
	Attempt   int
	Candidate CandidateSpec
	Outcome   AttemptOutcome
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted after attempt %d (%s): %s", e.Attempt, e.Candidate, e.Outcome.Reason)
}
