package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/workitem-api/internal/domain"
	"github.com/phrazzld/workitem-api/internal/queue"
	"github.com/phrazzld/workitem-api/internal/store"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSubscriber exposes a raw delivery channel so tests can inject
// arbitrary payloads and acknowledgement hooks.
type testSubscriber struct {
	ch chan queue.Delivery
}

func newTestSubscriber() *testSubscriber {
	return &testSubscriber{ch: make(chan queue.Delivery, 16)}
}

func (s *testSubscriber) Subscribe(ctx context.Context) (<-chan queue.Delivery, error) {
	return s.ch, nil
}

// ackTracker records how a delivery was acknowledged.
type ackTracker struct {
	mu       sync.Mutex
	acked    bool
	nacked   bool
	requeued bool
	done     chan struct{}
}

func newAckTracker() *ackTracker {
	return &ackTracker{done: make(chan struct{})}
}

func (a *ackTracker) delivery(body []byte) queue.Delivery {
	return queue.NewDelivery(body,
		func() error {
			a.mu.Lock()
			a.acked = true
			a.mu.Unlock()
			close(a.done)
			return nil
		},
		func(requeue bool) error {
			a.mu.Lock()
			a.nacked = true
			a.requeued = requeue
			a.mu.Unlock()
			close(a.done)
			return nil
		},
	)
}

func (a *ackTracker) wait(t *testing.T) {
	t.Helper()
	select {
	case <-a.done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery was never acknowledged")
	}
}

func mustCreateItem(t *testing.T, itemStore store.WorkItemStore, value int) *domain.WorkItem {
	t.Helper()

	item, err := domain.NewWorkItem(value)
	require.NoError(t, err)
	require.NoError(t, itemStore.Create(context.Background(), item))
	return item
}

func encodeMessage(t *testing.T, id string, value int) []byte {
	t.Helper()

	body, err := queue.DispatchMessage{ID: id, Value: value}.Encode()
	require.NoError(t, err)
	return body
}

func TestPool_ProcessesWorkItem(t *testing.T) {
	t.Parallel()

	itemStore := store.NewMemoryWorkItemStore()
	sub := newTestSubscriber()
	pool := NewPool(itemStore, sub, DelaySimulator{}, DefaultPoolConfig(), newTestLogger())

	require.NoError(t, pool.Start())
	defer pool.Stop()

	item := mustCreateItem(t, itemStore, 7)
	tracker := newAckTracker()
	sub.ch <- tracker.delivery(encodeMessage(t, item.ID.String(), 7))

	tracker.wait(t)
	assert.True(t, tracker.acked)

	got, err := itemStore.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)
	require.NotNil(t, got.Result)
	assert.Equal(t, 49, *got.Result)
}

func TestPool_DropsMalformedPayload(t *testing.T) {
	t.Parallel()

	itemStore := store.NewMemoryWorkItemStore()
	sub := newTestSubscriber()
	pool := NewPool(itemStore, sub, DelaySimulator{}, DefaultPoolConfig(), newTestLogger())

	require.NoError(t, pool.Start())
	defer pool.Stop()

	tracker := newAckTracker()
	sub.ch <- tracker.delivery([]byte("{not json"))

	tracker.wait(t)
	assert.True(t, tracker.acked, "malformed payloads are dropped, not requeued")
	assert.False(t, tracker.nacked)
}

func TestPool_DropsUnknownWorkItem(t *testing.T) {
	t.Parallel()

	itemStore := store.NewMemoryWorkItemStore()
	sub := newTestSubscriber()
	pool := NewPool(itemStore, sub, DelaySimulator{}, DefaultPoolConfig(), newTestLogger())

	require.NoError(t, pool.Start())
	defer pool.Stop()

	tracker := newAckTracker()
	sub.ch <- tracker.delivery(encodeMessage(t, uuid.New().String(), 5))

	tracker.wait(t)
	assert.True(t, tracker.acked, "messages for deleted items are dropped")
}

func TestPool_DropsValueMismatch(t *testing.T) {
	t.Parallel()

	itemStore := store.NewMemoryWorkItemStore()
	sub := newTestSubscriber()
	pool := NewPool(itemStore, sub, DelaySimulator{}, DefaultPoolConfig(), newTestLogger())

	require.NoError(t, pool.Start())
	defer pool.Stop()

	item := mustCreateItem(t, itemStore, 5)
	tracker := newAckTracker()
	sub.ch <- tracker.delivery(encodeMessage(t, item.ID.String(), 6))

	tracker.wait(t)
	assert.True(t, tracker.acked)

	// The item is untouched.
	got, err := itemStore.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, got.Processed)
	assert.Nil(t, got.Result)
}

func TestPool_RedeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	itemStore := store.NewMemoryWorkItemStore()
	sub := newTestSubscriber()
	pool := NewPool(itemStore, sub, DelaySimulator{}, DefaultPoolConfig(), newTestLogger())

	require.NoError(t, pool.Start())
	defer pool.Stop()

	item := mustCreateItem(t, itemStore, 4)
	body := encodeMessage(t, item.ID.String(), 4)

	first := newAckTracker()
	sub.ch <- first.delivery(body)
	first.wait(t)

	second := newAckTracker()
	sub.ch <- second.delivery(body)
	second.wait(t)
	assert.True(t, second.acked)

	got, err := itemStore.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)
	require.NotNil(t, got.Result)
	assert.Equal(t, 16, *got.Result)
}

func TestPool_ShutdownInterruptsSimulatedWait(t *testing.T) {
	t.Parallel()

	itemStore := store.NewMemoryWorkItemStore()
	sub := newTestSubscriber()
	// Long enough that the wait is guaranteed to be in flight when Stop runs.
	pool := NewPool(itemStore, sub, DelaySimulator{PerUnit: time.Minute}, PoolConfig{WorkerCount: 1}, newTestLogger())

	require.NoError(t, pool.Start())

	item := mustCreateItem(t, itemStore, 9)
	tracker := newAckTracker()
	sub.ch <- tracker.delivery(encodeMessage(t, item.ID.String(), 9))

	// Give the worker a moment to enter the simulated wait, then shut down.
	time.Sleep(50 * time.Millisecond)
	pool.Stop()

	tracker.wait(t)
	assert.True(t, tracker.nacked, "abandoned deliveries are returned to the queue")
	assert.True(t, tracker.requeued)

	// An interrupted worker must not write processed state.
	got, err := itemStore.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, got.Processed)
	assert.Nil(t, got.Result)
}

func TestPool_EndToEndWithMemoryQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	itemStore := store.NewMemoryWorkItemStore()
	q := queue.NewMemoryQueue(100, newTestLogger())
	pool := NewPool(itemStore, q, DelaySimulator{}, DefaultPoolConfig(), newTestLogger())

	require.NoError(t, pool.Start())
	defer pool.Stop()

	const itemCount = 20
	ids := make(map[uuid.UUID]struct{}, itemCount)

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < itemCount; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			value := i%domain.MaxWorkItemValue + 1
			item, err := domain.NewWorkItem(value)
			if err != nil {
				t.Errorf("new work item: %v", err)
				return
			}
			if err := itemStore.Create(ctx, item); err != nil {
				t.Errorf("create: %v", err)
				return
			}
			if err := q.Publish(ctx, queue.DispatchMessage{ID: item.ID.String(), Value: value}); err != nil {
				t.Errorf("publish: %v", err)
				return
			}

			mu.Lock()
			ids[item.ID] = struct{}{}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	require.Len(t, ids, itemCount, "each submission produced a distinct id")

	assert.Eventually(t, func() bool {
		all, err := itemStore.ListAll(ctx)
		if err != nil || len(all) != itemCount {
			return false
		}
		for _, item := range all {
			if !item.Processed {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond, "all items eventually processed")

	// No item is ever observed with result and processed out of sync.
	all, err := itemStore.ListAll(ctx)
	require.NoError(t, err)
	for _, item := range all {
		require.NotNil(t, item.Result, fmt.Sprintf("item %s missing result", item.ID))
		assert.Equal(t, item.Value*item.Value, *item.Result)
	}
}

func TestNewPool_InvalidWorkerCount(t *testing.T) {
	t.Parallel()

	pool := NewPool(
		store.NewMemoryWorkItemStore(),
		newTestSubscriber(),
		DelaySimulator{},
		PoolConfig{WorkerCount: 0},
		newTestLogger(),
	)
	assert.Equal(t, 1, pool.workerCount)
}
