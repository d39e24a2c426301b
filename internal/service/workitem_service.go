package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/workitem-api/internal/domain"
	"github.com/phrazzld/workitem-api/internal/queue"
	"github.com/phrazzld/workitem-api/internal/store"
)

// WorkItemService provides work item submission and lifecycle operations.
type WorkItemService interface {
	// Create validates the value, persists a new pending work item, and
	// publishes a dispatch message for asynchronous processing.
	// Returns the generated work item ID; processing happens after return.
	Create(ctx context.Context, value int) (uuid.UUID, error)

	// Get retrieves a work item by its ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error)

	// List retrieves all work items.
	List(ctx context.Context) ([]*domain.WorkItem, error)

	// Delete removes an unprocessed work item.
	// Returns ErrWorkItemNotFound if the item does not exist and
	// domain.ErrWorkItemProcessed if it has already been processed.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Common sentinel errors for WorkItemService
var (
	// ErrWorkItemNotFound indicates that the work item does not exist
	ErrWorkItemNotFound = errors.New("work item not found")
)

// WorkItemServiceError wraps errors from the work item service with context.
type WorkItemServiceError struct {
	// Operation is the operation that failed (e.g., "create_work_item")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for WorkItemServiceError.
func (e *WorkItemServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("work item service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("work item service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *WorkItemServiceError) Unwrap() error {
	return e.Err
}

// NewWorkItemServiceError creates a new WorkItemServiceError.
// It returns known sentinel errors directly without wrapping.
func NewWorkItemServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrWorkItemNotFound) ||
		errors.Is(err, store.ErrWorkItemNotFound) ||
		errors.Is(err, domain.ErrValueOutOfRange) ||
		errors.Is(err, domain.ErrWorkItemProcessed) {
		return err
	}

	return &WorkItemServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// workItemServiceImpl implements the WorkItemService interface
type workItemServiceImpl struct {
	store     store.WorkItemStore
	publisher queue.Publisher
	logger    *slog.Logger
}

// NewWorkItemService creates a new WorkItemService.
// It returns an error if any of the required dependencies are nil.
func NewWorkItemService(
	itemStore store.WorkItemStore,
	publisher queue.Publisher,
	logger *slog.Logger,
) (WorkItemService, error) {
	if itemStore == nil {
		return nil, &WorkItemServiceError{
			Operation: "create_service",
			Message:   "itemStore cannot be nil",
		}
	}
	if publisher == nil {
		return nil, &WorkItemServiceError{
			Operation: "create_service",
			Message:   "publisher cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &workItemServiceImpl{
		store:     itemStore,
		publisher: publisher,
		logger:    logger.With("component", "workitem_service"),
	}, nil
}

// Create persists a new pending work item and publishes its dispatch message.
//
// The insert and the publish are deliberately not atomic: if the publish
// fails the item stays persisted in pending state and is never dispatched.
// The caller sees the error, and the item remains visible for reporting.
func (s *workItemServiceImpl) Create(ctx context.Context, value int) (uuid.UUID, error) {
	// The HTTP boundary validates the range too, but the service must defend
	// against out-of-range input on its own.
	item, err := domain.NewWorkItem(value)
	if err != nil {
		s.logger.Warn("rejected work item submission",
			"error", err,
			"value", value)
		return uuid.Nil, NewWorkItemServiceError("create_work_item", "invalid value", err)
	}

	if err := s.store.Create(ctx, item); err != nil {
		s.logger.Error("failed to persist work item",
			"error", err,
			"value", value)
		return uuid.Nil, NewWorkItemServiceError("create_work_item", "failed to persist work item", err)
	}

	msg := queue.DispatchMessage{ID: item.ID.String(), Value: item.Value}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		// No rollback: the pending item stays in the store, undispatched.
		s.logger.Error("work item persisted but dispatch publish failed",
			"error", err,
			"work_item_id", item.ID)
		return uuid.Nil, NewWorkItemServiceError("create_work_item", "failed to publish dispatch message", err)
	}

	s.logger.Info("work item created",
		"work_item_id", item.ID,
		"value", item.Value)

	return item.ID, nil
}

// Get retrieves a work item by its ID.
func (s *workItemServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrWorkItemNotFound) {
			return nil, ErrWorkItemNotFound
		}
		s.logger.Error("failed to retrieve work item",
			"error", err,
			"work_item_id", id)
		return nil, NewWorkItemServiceError("get_work_item", "failed to retrieve work item", err)
	}

	return item, nil
}

// List retrieves all work items.
func (s *workItemServiceImpl) List(ctx context.Context) ([]*domain.WorkItem, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list work items", "error", err)
		return nil, NewWorkItemServiceError("list_work_items", "failed to list work items", err)
	}

	return items, nil
}

// Delete removes a work item, enforcing that processed items are immutable.
func (s *workItemServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrWorkItemNotFound) {
			return ErrWorkItemNotFound
		}
		s.logger.Error("failed to retrieve work item for deletion",
			"error", err,
			"work_item_id", id)
		return NewWorkItemServiceError("delete_work_item", "failed to retrieve work item", err)
	}

	if item.Processed {
		s.logger.Warn("rejected deletion of processed work item", "work_item_id", id)
		return domain.ErrWorkItemProcessed
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete work item",
			"error", err,
			"work_item_id", id)
		return NewWorkItemServiceError("delete_work_item", "failed to delete work item", err)
	}

	s.logger.Info("work item deleted", "work_item_id", id)
	return nil
}
