package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryQueue_PublishAndReceive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemoryQueue(10, newTestLogger())

	msg := DispatchMessage{ID: "item-1", Value: 7}
	require.NoError(t, q.Publish(ctx, msg))

	deliveries, err := q.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		decoded, err := DecodeDispatchMessage(d.Body)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
		assert.NoError(t, d.Ack())
		assert.NoError(t, d.Nack(true))
	case <-time.After(time.Second):
		t.Fatal("expected a delivery")
	}
}

func TestMemoryQueue_WireFormat(t *testing.T) {
	t.Parallel()

	body, err := DispatchMessage{ID: "abc", Value: 3}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","value":3}`, string(body))
}

func TestMemoryQueue_BackpressureBlocksUntilConsumed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := NewMemoryQueue(1, newTestLogger())

	require.NoError(t, q.Publish(ctx, DispatchMessage{ID: "a", Value: 1}))

	published := make(chan error, 1)
	go func() {
		published <- q.Publish(ctx, DispatchMessage{ID: "b", Value: 2})
	}()

	// The second publish must block while the buffer is full.
	select {
	case err := <-published:
		t.Fatalf("publish returned before space freed up: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	deliveries, err := q.Subscribe(ctx)
	require.NoError(t, err)
	<-deliveries

	select {
	case err := <-published:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish did not unblock after a delivery was consumed")
	}
}

func TestMemoryQueue_PublishCancelledUnderBackpressure(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1, newTestLogger())
	require.NoError(t, q.Publish(context.Background(), DispatchMessage{ID: "a", Value: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.Publish(ctx, DispatchMessage{ID: "b", Value: 2})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_PublishAfterClose(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1, newTestLogger())
	require.NoError(t, q.Close())

	err := q.Publish(context.Background(), DispatchMessage{ID: "a", Value: 1})
	assert.ErrorIs(t, err, ErrQueueClosed)

	// Closing again is safe.
	assert.NoError(t, q.Close())
}

func TestMemoryQueue_CloseEndsSubscription(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue(1, newTestLogger())
	deliveries, err := q.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, q.Close())

	select {
	case _, ok := <-deliveries:
		assert.False(t, ok, "delivery channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("delivery channel was not closed")
	}
}
