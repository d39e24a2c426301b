package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/workitem-api/internal/domain"
)

// MemoryWorkItemStore is an in-memory implementation of WorkItemStore backed
// by a mutex-guarded map. It is used in unit tests and for local development
// without a database.
type MemoryWorkItemStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.WorkItem
}

// NewMemoryWorkItemStore creates an empty in-memory work item store.
func NewMemoryWorkItemStore() *MemoryWorkItemStore {
	return &MemoryWorkItemStore{
		items: make(map[uuid.UUID]domain.WorkItem),
	}
}

// Ensure MemoryWorkItemStore implements the WorkItemStore interface
var _ WorkItemStore = (*MemoryWorkItemStore)(nil)

// Create implements WorkItemStore.Create.
// It validates the item, assigns a generated ID, and stores a copy.
func (s *MemoryWorkItemStore) Create(ctx context.Context, item *domain.WorkItem) error {
	if err := item.Validate(); err != nil {
		return NewStoreError("work_item", "create", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = *item
	return nil
}

// GetByID implements WorkItemStore.GetByID.
func (s *MemoryWorkItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrWorkItemNotFound
	}

	// Return a copy so callers cannot mutate stored state directly.
	out := item
	return &out, nil
}

// Update implements WorkItemStore.Update.
func (s *MemoryWorkItemStore) Update(ctx context.Context, item *domain.WorkItem) error {
	if err := item.Validate(); err != nil {
		return NewStoreError("work_item", "update", "validation failed", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return ErrWorkItemNotFound
	}
	s.items[item.ID] = *item
	return nil
}

// Delete implements WorkItemStore.Delete. Deleting an absent ID is a no-op.
func (s *MemoryWorkItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

// ListAll implements WorkItemStore.ListAll.
func (s *MemoryWorkItemStore) ListAll(ctx context.Context) ([]*domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.WorkItem, 0, len(s.items))
	for _, item := range s.items {
		copied := item
		out = append(out, &copied)
	}
	return out, nil
}
