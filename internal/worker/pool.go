package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/workitem-api/internal/queue"
	"github.com/phrazzld/workitem-api/internal/store"
)

// disposition classifies the outcome of handling a single delivery. The pool
// drives distinct handling per variant instead of threading control flow
// through error propagation.
type disposition int

const (
	// dispositionProcessed: consistency check passed, result written.
	dispositionProcessed disposition = iota

	// dispositionDropped: the message was stale or corrupt (undecodable
	// payload, absent item, or value mismatch). Logged and discarded with no
	// retry and no dead-lettering.
	dispositionDropped

	// dispositionFailed: a store operation failed mid-processing. The
	// message is lost; fatal to this one processing attempt only.
	dispositionFailed

	// dispositionAbandoned: shutdown interrupted the simulated wait. The
	// item is left unwritten and the delivery is returned for redelivery.
	dispositionAbandoned
)

// PoolConfig holds configuration options for the worker pool
type PoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: 2,
	}
}

// Pool manages a fixed-size pool of worker goroutines that consume dispatch
// messages from the queue, re-validate them against persisted state, perform
// the simulated computation, and persist the completed state. It handles
// graceful shutdown and worker lifecycle.
type Pool struct {
	store       store.WorkItemStore
	subscriber  queue.Subscriber
	simulator   Simulator
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
}

// NewPool creates a new worker pool with the specified configuration.
func NewPool(
	itemStore store.WorkItemStore,
	subscriber queue.Subscriber,
	simulator Simulator,
	config PoolConfig,
	logger *slog.Logger,
) *Pool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		store:       itemStore,
		subscriber:  subscriber,
		simulator:   simulator,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "worker_pool"),
	}
}

// Start subscribes to the dispatch queue and launches the worker goroutines.
func (p *Pool) Start() error {
	deliveries, err := p.subscriber.Subscribe(p.ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to dispatch queue: %w", err)
	}

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, deliveries)
	}

	p.logger.Info("worker pool started", "worker_count", p.workerCount)
	return nil
}

// Stop gracefully shuts down the pool: workers stop accepting new deliveries
// and in-flight simulated waits are interrupted without writing item state.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// worker consumes deliveries until shutdown or channel close.
func (p *Pool) worker(id int, deliveries <-chan queue.Delivery) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("starting worker")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("stopping worker")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				logger.Debug("delivery channel closed, stopping worker")
				return
			}
			p.handleDelivery(delivery, logger)
		}
	}
}

// handleDelivery processes one delivery and acknowledges it per disposition.
func (p *Pool) handleDelivery(delivery queue.Delivery, logger *slog.Logger) {
	disp, reason, err := p.processDelivery(p.ctx, delivery, logger)

	switch disp {
	case dispositionProcessed:
		if ackErr := delivery.Ack(); ackErr != nil {
			logger.Error("failed to ack processed delivery", "error", ackErr)
		}

	case dispositionDropped:
		// Stale or corrupt dispatch: invisible to any caller, not retried.
		logger.Warn("dropping dispatch message", "reason", reason, "error", err)
		if ackErr := delivery.Ack(); ackErr != nil {
			logger.Error("failed to ack dropped delivery", "error", ackErr)
		}

	case dispositionFailed:
		// The message is lost; no retry, no dead-letter.
		logger.Error("processing failed, message lost", "reason", reason, "error", err)
		if ackErr := delivery.Ack(); ackErr != nil {
			logger.Error("failed to ack failed delivery", "error", ackErr)
		}

	case dispositionAbandoned:
		// Requeue so another consumer picks it up after restart.
		logger.Info("delivery abandoned during shutdown, requeueing")
		if nackErr := delivery.Nack(true); nackErr != nil {
			logger.Error("failed to nack abandoned delivery", "error", nackErr)
		}
	}
}

// processDelivery runs the consume pipeline for a single dispatch message:
// decode, load, consistency check, simulated computation, persist.
func (p *Pool) processDelivery(
	ctx context.Context,
	delivery queue.Delivery,
	logger *slog.Logger,
) (disposition, string, error) {
	msg, err := queue.DecodeDispatchMessage(delivery.Body)
	if err != nil {
		return dispositionDropped, "malformed payload", err
	}

	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return dispositionDropped, "malformed work item id", err
	}

	item, err := p.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrWorkItemNotFound) {
			// Deleted after dispatch; nothing to do.
			return dispositionDropped, "work item absent", nil
		}
		return dispositionFailed, "failed to load work item", err
	}

	// Consistency check: the dispatched value must match persisted state,
	// otherwise the message is stale or corrupt.
	if item.Value != msg.Value {
		logger.Warn("dispatched value disagrees with persisted value",
			"work_item_id", item.ID,
			"dispatched_value", msg.Value,
			"persisted_value", item.Value)
		return dispositionDropped, "value mismatch", nil
	}

	if err := p.simulator.Simulate(ctx, item.Value); err != nil {
		// Shutdown during the wait: leave the item untouched.
		return dispositionAbandoned, "simulated wait interrupted", err
	}

	// Redelivery of a completed item recomputes the same deterministic
	// result; MarkProcessed treats that as a no-op.
	result := item.ComputeResult()
	if err := item.MarkProcessed(result); err != nil {
		return dispositionFailed, "result transition rejected", err
	}

	if err := p.store.Update(ctx, item); err != nil {
		return dispositionFailed, "failed to persist processed state", err
	}

	logger.Info("work item processed",
		"work_item_id", item.ID,
		"value", item.Value,
		"result", result)

	return dispositionProcessed, "", nil
}
