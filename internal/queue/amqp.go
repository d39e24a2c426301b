package queue

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPQueue implements Queue on top of a RabbitMQ broker. The queue is
// declared durable and consumed with manual acknowledgement, giving
// at-least-once delivery: a message that was received but never acked (for
// example because a worker shut down mid-processing) is redelivered.
type AMQPQueue struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	name   string
	logger *slog.Logger
}

// NewAMQPQueue connects to the broker at url, declares the named queue, and
// configures per-consumer prefetch so the worker pool is not flooded.
func NewAMQPQueue(url, name string, prefetch int, logger *slog.Logger) (*AMQPQueue, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", name, err)
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	return &AMQPQueue{
		conn:   conn,
		ch:     ch,
		name:   name,
		logger: logger.With("component", "amqp_queue", "queue", name),
	}, nil
}

// Ensure AMQPQueue implements the Queue interface
var _ Queue = (*AMQPQueue)(nil)

// Publish implements Publisher.Publish. The message is published persistent
// so it survives broker restarts along with the durable queue.
func (q *AMQPQueue) Publish(ctx context.Context, msg DispatchMessage) error {
	body, err := msg.Encode()
	if err != nil {
		return err
	}

	err = q.ch.PublishWithContext(
		ctx,
		"",     // default exchange
		q.name, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish dispatch message: %w", err)
	}

	q.logger.Debug("dispatch message published", "work_item_id", msg.ID)
	return nil
}

// Subscribe implements Subscriber.Subscribe. Deliveries carry the broker's
// ack/nack so the worker pool controls redelivery.
func (q *AMQPQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	msgs, err := q.ch.Consume(
		q.name,
		"",    // consumer tag, broker-generated
		false, // autoAck off: the pool acks after handling
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				d := NewDelivery(
					msg.Body,
					func() error { return msg.Ack(false) },
					func(requeue bool) error { return msg.Nack(false, requeue) },
				)
				select {
				case out <- d:
				case <-ctx.Done():
					// Never acked, so the broker redelivers it.
					return
				}
			}
		}
	}()

	return out, nil
}

// Close implements Queue.Close.
func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return fmt.Errorf("failed to close AMQP channel: %w", err)
	}
	if err := q.conn.Close(); err != nil {
		return fmt.Errorf("failed to close AMQP connection: %w", err)
	}
	return nil
}
