package colors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or contradictory query input.
	ErrValidation = errors.New("invalid request")

	// ErrNotFound is the parent of every "no snapshot" outcome.
	ErrNotFound = errors.New("snapshot not found")
	// ErrNoData is returned when the store holds no snapshots at all.
	ErrNoData = fmt.Errorf("%w: no data yet", ErrNotFound)
	// ErrUnknownDate is returned when no folder exists for a date.
	ErrUnknownDate = fmt.Errorf("%w: unknown date", ErrNotFound)
	// ErrEmptyDate is returned when a date folder exists but holds no snapshots.
	ErrEmptyDate = fmt.Errorf("%w: no data for date", ErrNotFound)

	// ErrUpdateInProgress is returned when an update is triggered while one runs.
	ErrUpdateInProgress = errors.New("update already in progress")

	// ErrPipeline wraps failures of the imaging pipeline.
	ErrPipeline = errors.New("imaging pipeline failed")

	// ErrStoreIO wraps storage read/write failures.
	ErrStoreIO = errors.New("snapshot store i/o failed")
)
