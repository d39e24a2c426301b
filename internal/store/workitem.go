package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/workitem-api/internal/domain"
)

// WorkItemStore defines the interface for work item persistence.
type WorkItemStore interface {
	// Create saves a new work item to the store and assigns its ID.
	// The item must be valid according to domain validation rules.
	Create(ctx context.Context, item *domain.WorkItem) error

	// GetByID retrieves a work item by its unique ID.
	// Returns ErrWorkItemNotFound if the work item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error)

	// Update overwrites an existing work item by ID.
	// Returns ErrWorkItemNotFound if the work item does not exist.
	Update(ctx context.Context, item *domain.WorkItem) error

	// Delete removes a work item from the store by its ID.
	// Deleting an absent ID is not an error; callers that care about
	// existence check it first with GetByID.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListAll retrieves every work item in the store. The result is an
	// unordered snapshot taken at call time; no pagination is provided.
	ListAll(ctx context.Context) ([]*domain.WorkItem, error)
}
