package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Bounds for the value carried by a work item. Submissions outside this range
// are rejected before anything is persisted.
const (
	MinWorkItemValue = 1
	MaxWorkItemValue = 10
)

// WorkItem is the unit of asynchronous processing. It is submitted with a
// value, dispatched to the worker pool, and eventually completed with a
// deterministic result. Once processed it is immutable.
type WorkItem struct {
	// ID uniquely identifies the work item. The store assigns it on create.
	ID uuid.UUID `json:"id"`

	// Value is the submitted payload, bounded to [MinWorkItemValue, MaxWorkItemValue].
	Value int `json:"value"`

	// Processed reports whether the asynchronous computation has completed.
	Processed bool `json:"processed"`

	// Result holds the computed outcome. It is set exactly when Processed is
	// true; a pending item has no result at all, not a zero result.
	Result *int `json:"result,omitempty"`
}

// NewWorkItem creates a pending work item with the given value.
// Returns ErrValueOutOfRange if the value is outside the accepted bounds.
func NewWorkItem(value int) (*WorkItem, error) {
	if value < MinWorkItemValue || value > MaxWorkItemValue {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrValueOutOfRange, value, MinWorkItemValue, MaxWorkItemValue)
	}

	return &WorkItem{
		Value:     value,
		Processed: false,
		Result:    nil,
	}, nil
}

// Validate checks the work item's internal consistency: the value must be in
// range and the result must be present exactly when the item is processed.
func (w *WorkItem) Validate() error {
	if w.Value < MinWorkItemValue || w.Value > MaxWorkItemValue {
		return fmt.Errorf("%w: %d not in [%d, %d]",
			ErrValueOutOfRange, w.Value, MinWorkItemValue, MaxWorkItemValue)
	}

	if w.Processed && w.Result == nil {
		return ErrResultMissing
	}
	if !w.Processed && w.Result != nil {
		return ErrResultWithoutProcessed
	}

	return nil
}

// ComputeResult returns the deterministic outcome of processing this item.
func (w *WorkItem) ComputeResult() int {
	return w.Value * w.Value
}

// MarkProcessed transitions the item to its completed state with the given
// result. The transition is idempotent for an equal result, so redelivered
// dispatch messages are harmless. A different result on an already-processed
// item is rejected with ErrWorkItemProcessed.
func (w *WorkItem) MarkProcessed(result int) error {
	if w.Processed {
		if w.Result != nil && *w.Result == result {
			return nil
		}
		return fmt.Errorf("%w: result already recorded", ErrWorkItemProcessed)
	}

	w.Processed = true
	w.Result = &result
	return nil
}
