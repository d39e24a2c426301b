// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValueOutOfRange is returned when a work item value is outside the
	// accepted [1, 10] range at submission time.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrWorkItemProcessed is returned when an operation is not permitted on
	// an already-processed work item (deletion, or overwriting its result).
	ErrWorkItemProcessed = errors.New("work item already processed")

	// ErrResultMissing is returned when a work item is marked processed but
	// carries no result.
	ErrResultMissing = errors.New("processed work item must have a result")

	// ErrResultWithoutProcessed is returned when an unprocessed work item
	// carries a result.
	ErrResultWithoutProcessed = errors.New("unprocessed work item cannot have a result")
)
