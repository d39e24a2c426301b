package worker

import (
	"context"
	"time"
)

// Simulator models the variable-cost computation performed on a work item.
// It is injectable so tests can run instantaneously without timing flakiness.
// Version: 1.0
type Simulator interface {
	// Simulate blocks for the simulated duration of processing an item of
	// the given value. Returns ctx.Err() if cancelled before completion.
	Simulate(ctx context.Context, value int) error
}

// DelaySimulator waits value * PerUnit, modelling work whose cost grows
// linearly with the item's value.
type DelaySimulator struct {
	PerUnit time.Duration
}

// Ensure DelaySimulator implements the Simulator interface
var _ Simulator = DelaySimulator{}

// Simulate implements Simulator.Simulate. The wait is cancellable: a worker
// asked to shut down mid-wait abandons the item without marking it processed.
func (s DelaySimulator) Simulate(ctx context.Context, value int) error {
	delay := time.Duration(value) * s.PerUnit
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
