package queue

import (
	"context"
	"encoding/json"
	"errors"
)

// Common errors returned by queue implementations.
var (
	ErrQueueClosed = errors.New("dispatch queue is closed")
)

// DispatchMessage is the wire payload referencing a work item for
// asynchronous processing. It is JSON-encoded on the queue.
type DispatchMessage struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

// Encode serializes the message to its JSON wire format.
func (m DispatchMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeDispatchMessage deserializes a JSON wire payload into a DispatchMessage.
func DecodeDispatchMessage(body []byte) (DispatchMessage, error) {
	var m DispatchMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return DispatchMessage{}, err
	}
	return m, nil
}

// Delivery is a single message handed to a consumer. Acknowledgement is
// backend-specific: the AMQP backend uses it for at-least-once redelivery,
// the in-process backend treats it as a no-op.
type Delivery struct {
	Body []byte

	ack  func() error
	nack func(requeue bool) error
}

// NewDelivery creates a Delivery with the given body and acknowledgement
// callbacks. Nil callbacks are replaced with no-ops.
func NewDelivery(body []byte, ack func() error, nack func(requeue bool) error) Delivery {
	if ack == nil {
		ack = func() error { return nil }
	}
	if nack == nil {
		nack = func(requeue bool) error { return nil }
	}
	return Delivery{Body: body, ack: ack, nack: nack}
}

// Ack marks the delivery as successfully handled.
func (d Delivery) Ack() error {
	return d.ack()
}

// Nack returns the delivery to the broker, optionally requeueing it for
// redelivery to another consumer.
func (d Delivery) Nack(requeue bool) error {
	return d.nack(requeue)
}

// Publisher is the producer side of the dispatch queue.
// Version: 1.0
type Publisher interface {
	// Publish enqueues a dispatch message. When the queue is at capacity the
	// call blocks until space frees up or ctx is cancelled (backpressure
	// rather than rejection; work item creation is not latency-critical).
	Publish(ctx context.Context, msg DispatchMessage) error
}

// Subscriber is the consumer side of the dispatch queue.
// Version: 1.0
type Subscriber interface {
	// Subscribe returns a channel of deliveries. The channel is closed when
	// the queue shuts down. Multiple consumers may receive from the same
	// channel; each delivery goes to exactly one of them.
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// Queue combines both sides of the dispatch channel plus lifecycle management.
type Queue interface {
	Publisher
	Subscriber

	// Close releases queue resources. Producers must have stopped publishing
	// before Close is called.
	Close() error
}
