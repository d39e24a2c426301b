package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/workitem-api/internal/domain"
	"github.com/phrazzld/workitem-api/internal/store"
)

// WorkItemStore implements the store.WorkItemStore interface
// using a PostgreSQL database as the storage backend.
type WorkItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWorkItemStore creates a new PostgreSQL implementation of the WorkItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewWorkItemStore(db store.DBTX, logger *slog.Logger) *WorkItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &WorkItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "workitem_store")),
	}
}

// Ensure WorkItemStore implements store.WorkItemStore interface
var _ store.WorkItemStore = (*WorkItemStore)(nil)

// Create implements store.WorkItemStore.Create.
// It assigns a generated ID and saves a new work item to the database.
// Returns validation errors from the domain WorkItem if data is invalid.
func (s *WorkItemStore) Create(ctx context.Context, item *domain.WorkItem) error {
	if err := item.Validate(); err != nil {
		s.logger.Warn("work item validation failed during create",
			slog.String("error", err.Error()))
		return store.NewStoreError("work_item", "create", "validation failed", err)
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query := `
		INSERT INTO work_items (id, value, processed, result)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, item.ID, item.Value, item.Processed, resultArg(item))
	if err != nil {
		s.logger.Error("failed to create work item",
			slog.String("error", err.Error()),
			slog.String("work_item_id", item.ID.String()))
		return MapError(err)
	}

	s.logger.Debug("work item created",
		slog.String("work_item_id", item.ID.String()),
		slog.Int("value", item.Value))
	return nil
}

// GetByID implements store.WorkItemStore.GetByID.
// Returns store.ErrWorkItemNotFound if the work item does not exist.
func (s *WorkItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	query := `
		SELECT id, value, processed, result
		FROM work_items
		WHERE id = $1
	`
	item, err := scanWorkItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrWorkItemNotFound
		}
		s.logger.Error("failed to get work item",
			slog.String("error", err.Error()),
			slog.String("work_item_id", id.String()))
		return nil, MapError(err)
	}

	return item, nil
}

// Update implements store.WorkItemStore.Update.
// It overwrites the stored record by ID.
// Returns store.ErrWorkItemNotFound if the work item does not exist.
func (s *WorkItemStore) Update(ctx context.Context, item *domain.WorkItem) error {
	if err := item.Validate(); err != nil {
		s.logger.Warn("work item validation failed during update",
			slog.String("error", err.Error()),
			slog.String("work_item_id", item.ID.String()))
		return store.NewStoreError("work_item", "update", "validation failed", err)
	}

	query := `
		UPDATE work_items
		SET value = $2, processed = $3, result = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, item.ID, item.Value, item.Processed, resultArg(item))
	if err != nil {
		s.logger.Error("failed to update work item",
			slog.String("error", err.Error()),
			slog.String("work_item_id", item.ID.String()))
		return MapError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrWorkItemNotFound
	}

	s.logger.Debug("work item updated",
		slog.String("work_item_id", item.ID.String()),
		slog.Bool("processed", item.Processed))
	return nil
}

// Delete implements store.WorkItemStore.Delete.
// Deleting an absent ID is a silent no-op; callers that need to distinguish
// check existence first.
func (s *WorkItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM work_items WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		s.logger.Error("failed to delete work item",
			slog.String("error", err.Error()),
			slog.String("work_item_id", id.String()))
		return MapError(err)
	}
	return nil
}

// ListAll implements store.WorkItemStore.ListAll.
func (s *WorkItemStore) ListAll(ctx context.Context) ([]*domain.WorkItem, error) {
	query := `SELECT id, value, processed, result FROM work_items`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("failed to list work items", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.WorkItem, 0)
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, MapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkItem(row rowScanner) (*domain.WorkItem, error) {
	var (
		item   domain.WorkItem
		result sql.NullInt64
	)
	if err := row.Scan(&item.ID, &item.Value, &item.Processed, &result); err != nil {
		return nil, err
	}
	if result.Valid {
		r := int(result.Int64)
		item.Result = &r
	}
	return &item, nil
}

// resultArg converts the optional result pointer into a nullable SQL argument.
func resultArg(item *domain.WorkItem) sql.NullInt64 {
	if item.Result == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*item.Result), Valid: true}
}
