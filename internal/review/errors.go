package review

import "errors"

var (
	// ErrRunActive: a run is already in flight on this engine (single-flight).
	ErrRunActive = errors.New("a review run is already in progress")

	// ErrNoDocuments: the entry guard found nothing to review.
	ErrNoDocuments = errors.New("no documents available for review")

	// ErrNoCompleter: no completion provider was configured.
	ErrNoCompleter = errors.New("completion provider unavailable")

	// ErrCancelled: the run stopped at a cancellation checkpoint. This is a
	// first-class terminal outcome, not a failure.
	ErrCancelled = errors.New("review cancelled by caller")
)
