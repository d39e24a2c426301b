package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/workitem-api/internal/domain"
	"github.com/phrazzld/workitem-api/internal/store"
)

// stubRenderer returns fixed bytes or a fixed error.
type stubRenderer struct {
	out []byte
	err error
}

func (r *stubRenderer) Render(ctx context.Context, rows []ReportRow) ([]byte, error) {
	return r.out, r.err
}

func seedItems(t *testing.T, itemStore store.WorkItemStore, values []int, processed []int) {
	t.Helper()

	ctx := context.Background()
	for i, value := range values {
		item, err := domain.NewWorkItem(value)
		require.NoError(t, err)
		require.NoError(t, itemStore.Create(ctx, item))

		for _, p := range processed {
			if p == i {
				require.NoError(t, item.MarkProcessed(value*value))
				require.NoError(t, itemStore.Update(ctx, item))
			}
		}
	}
}

func TestReportService_GenerateReport(t *testing.T) {
	t.Parallel()

	t.Run("buckets by value", func(t *testing.T) {
		t.Parallel()

		itemStore := store.NewMemoryWorkItemStore()
		seedItems(t, itemStore, []int{10, 10, 8, 8, 8, 5}, nil)

		svc, err := NewReportService(itemStore, nil, newTestLogger())
		require.NoError(t, err)

		report, err := svc.GenerateReport(context.Background())
		require.NoError(t, err)

		assert.Equal(t, map[int]ReportBucket{
			10: {TotalItems: 2, ProcessedItems: 0},
			8:  {TotalItems: 3, ProcessedItems: 0},
			5:  {TotalItems: 1, ProcessedItems: 0},
		}, report)
	})

	t.Run("counts processed items", func(t *testing.T) {
		t.Parallel()

		itemStore := store.NewMemoryWorkItemStore()
		seedItems(t, itemStore, []int{4, 4, 4}, []int{0, 2})

		svc, err := NewReportService(itemStore, nil, newTestLogger())
		require.NoError(t, err)

		report, err := svc.GenerateReport(context.Background())
		require.NoError(t, err)

		assert.Equal(t, map[int]ReportBucket{
			4: {TotalItems: 3, ProcessedItems: 2},
		}, report)
	})

	t.Run("empty store yields empty mapping", func(t *testing.T) {
		t.Parallel()

		svc, err := NewReportService(store.NewMemoryWorkItemStore(), nil, newTestLogger())
		require.NoError(t, err)

		report, err := svc.GenerateReport(context.Background())
		require.NoError(t, err)
		assert.Empty(t, report)
	})
}

func TestReportService_ExportRows(t *testing.T) {
	t.Parallel()

	t.Run("flattens and orders rows", func(t *testing.T) {
		t.Parallel()

		itemStore := store.NewMemoryWorkItemStore()
		seedItems(t, itemStore, []int{10, 5, 8, 10}, []int{1})

		svc, err := NewReportService(itemStore, nil, newTestLogger())
		require.NoError(t, err)

		rows, err := svc.ExportRows(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []ReportRow{
			{Value: 5, TotalItems: 1, ProcessedItems: 1},
			{Value: 8, TotalItems: 1, ProcessedItems: 0},
			{Value: 10, TotalItems: 2, ProcessedItems: 0},
		}, rows)
	})

	t.Run("empty store fails distinctly", func(t *testing.T) {
		t.Parallel()

		svc, err := NewReportService(store.NewMemoryWorkItemStore(), nil, newTestLogger())
		require.NoError(t, err)

		_, err = svc.ExportRows(context.Background())
		assert.ErrorIs(t, err, ErrEmptyReportData)
	})
}

func TestReportService_RenderDocument(t *testing.T) {
	t.Parallel()

	t.Run("renders non-empty report", func(t *testing.T) {
		t.Parallel()

		itemStore := store.NewMemoryWorkItemStore()
		seedItems(t, itemStore, []int{3}, nil)

		svc, err := NewReportService(itemStore, &stubRenderer{out: []byte("%PDF-fake")}, newTestLogger())
		require.NoError(t, err)

		doc, err := svc.RenderDocument(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-fake"), doc)
	})

	t.Run("empty population surfaces ErrEmptyReportData", func(t *testing.T) {
		t.Parallel()

		svc, err := NewReportService(store.NewMemoryWorkItemStore(), &stubRenderer{}, newTestLogger())
		require.NoError(t, err)

		_, err = svc.RenderDocument(context.Background())
		assert.ErrorIs(t, err, ErrEmptyReportData)
	})

	t.Run("renderer failure wraps ErrReportRenderFailed", func(t *testing.T) {
		t.Parallel()

		itemStore := store.NewMemoryWorkItemStore()
		seedItems(t, itemStore, []int{3}, nil)

		svc, err := NewReportService(itemStore, &stubRenderer{err: errors.New("template missing")}, newTestLogger())
		require.NoError(t, err)

		_, err = svc.RenderDocument(context.Background())
		assert.ErrorIs(t, err, ErrReportRenderFailed)
		assert.NotErrorIs(t, err, ErrEmptyReportData)
	})

	t.Run("no renderer configured", func(t *testing.T) {
		t.Parallel()

		itemStore := store.NewMemoryWorkItemStore()
		seedItems(t, itemStore, []int{3}, nil)

		svc, err := NewReportService(itemStore, nil, newTestLogger())
		require.NoError(t, err)

		_, err = svc.RenderDocument(context.Background())
		assert.ErrorIs(t, err, ErrReportRenderFailed)
	})
}
