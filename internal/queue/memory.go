package queue

import (
	"context"
	"log/slog"
	"sync"
)

// MemoryQueue implements Queue with a buffered in-process channel. It is the
// default backend when no broker URL is configured and is used throughout the
// tests for deterministic, network-free runs.
type MemoryQueue struct {
	deliveries chan Delivery
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewMemoryQueue creates a channel-backed queue with the given capacity.
func NewMemoryQueue(capacity int, logger *slog.Logger) *MemoryQueue {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryQueue{
		deliveries: make(chan Delivery, capacity),
		logger:     logger.With("component", "memory_queue"),
	}
}

// Ensure MemoryQueue implements the Queue interface
var _ Queue = (*MemoryQueue)(nil)

// Publish implements Publisher.Publish. When the buffer is full the send
// blocks until a consumer frees space or ctx is cancelled.
func (q *MemoryQueue) Publish(ctx context.Context, msg DispatchMessage) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.mu.Unlock()

	body, err := msg.Encode()
	if err != nil {
		return err
	}

	select {
	case q.deliveries <- NewDelivery(body, nil, nil):
		q.logger.Debug("dispatch message enqueued",
			"work_item_id", msg.ID,
			"queue_len", len(q.deliveries),
			"queue_cap", cap(q.deliveries))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe implements Subscriber.Subscribe.
func (q *MemoryQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	return q.deliveries, nil
}

// Close implements Queue.Close. Producers must have stopped publishing; a
// Publish racing with Close is a caller bug.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.deliveries)
		q.logger.Info("dispatch queue closed")
	}
	return nil
}
