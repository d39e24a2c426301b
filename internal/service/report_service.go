package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/phrazzld/workitem-api/internal/store"
)

// ReportBucket aggregates work item counts for one distinct value.
// Buckets are derived from a live store scan on every request; they are a
// view, never persisted.
type ReportBucket struct {
	TotalItems     int `json:"total_items"`
	ProcessedItems int `json:"processed_items"`
}

// ReportRow is the flattened form of a bucket used for document rendering.
type ReportRow struct {
	Value          int `json:"value"`
	TotalItems     int `json:"total_items"`
	ProcessedItems int `json:"processed_items"`
}

// Common sentinel errors for ReportService
var (
	// ErrEmptyReportData indicates that no work items exist to render a
	// document from. The plain report legitimately returns an empty mapping
	// instead; only the export/render path fails on an empty population.
	ErrEmptyReportData = errors.New("no work items available for report")

	// ErrReportRenderFailed indicates that the document engine failed while
	// rendering a non-empty report.
	ErrReportRenderFailed = errors.New("report rendering failed")
)

// ReportRenderer renders flattened report rows into a document.
// Version: 1.0
type ReportRenderer interface {
	// Render produces the document bytes for the given rows.
	// Rows are never empty; the service checks for an empty population first.
	Render(ctx context.Context, rows []ReportRow) ([]byte, error)
}

// ReportService produces aggregate summaries over the work item population.
type ReportService interface {
	// GenerateReport scans all work items and buckets them by value.
	// An empty store yields an empty mapping, not an error.
	GenerateReport(ctx context.Context) (map[int]ReportBucket, error)

	// ExportRows flattens the report for document rendering, ordered by value.
	// Returns ErrEmptyReportData when no work items exist.
	ExportRows(ctx context.Context) ([]ReportRow, error)

	// RenderDocument renders the export rows into a PDF document.
	// Returns ErrEmptyReportData when no work items exist and an error
	// wrapping ErrReportRenderFailed when the document engine fails.
	RenderDocument(ctx context.Context) ([]byte, error)
}

// reportServiceImpl implements the ReportService interface
type reportServiceImpl struct {
	store    store.WorkItemStore
	renderer ReportRenderer
	logger   *slog.Logger
}

// NewReportService creates a new ReportService.
// The renderer may be nil, in which case RenderDocument is unavailable.
func NewReportService(
	itemStore store.WorkItemStore,
	renderer ReportRenderer,
	logger *slog.Logger,
) (ReportService, error) {
	if itemStore == nil {
		return nil, errors.New("itemStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reportServiceImpl{
		store:    itemStore,
		renderer: renderer,
		logger:   logger.With("component", "report_service"),
	}, nil
}

// GenerateReport scans all work items and buckets totals by value.
func (s *reportServiceImpl) GenerateReport(ctx context.Context) (map[int]ReportBucket, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to scan work items for report", "error", err)
		return nil, fmt.Errorf("failed to scan work items: %w", err)
	}

	buckets := make(map[int]ReportBucket)
	for _, item := range items {
		bucket := buckets[item.Value]
		bucket.TotalItems++
		if item.Processed {
			bucket.ProcessedItems++
		}
		buckets[item.Value] = bucket
	}

	s.logger.Debug("report generated",
		"item_count", len(items),
		"bucket_count", len(buckets))

	return buckets, nil
}

// ExportRows flattens the report into value-ordered rows for rendering.
func (s *reportServiceImpl) ExportRows(ctx context.Context) ([]ReportRow, error) {
	buckets, err := s.GenerateReport(ctx)
	if err != nil {
		return nil, err
	}

	if len(buckets) == 0 {
		return nil, ErrEmptyReportData
	}

	rows := make([]ReportRow, 0, len(buckets))
	for value, bucket := range buckets {
		rows = append(rows, ReportRow{
			Value:          value,
			TotalItems:     bucket.TotalItems,
			ProcessedItems: bucket.ProcessedItems,
		})
	}

	// Bucket iteration order is random; fix it for stable documents.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Value < rows[j].Value })

	return rows, nil
}

// RenderDocument renders the current report as a PDF.
func (s *reportServiceImpl) RenderDocument(ctx context.Context) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer configured", ErrReportRenderFailed)
	}

	rows, err := s.ExportRows(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.Render(ctx, rows)
	if err != nil {
		s.logger.Error("report document rendering failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrReportRenderFailed, err)
	}

	s.logger.Info("report document rendered",
		"row_count", len(rows),
		"size_bytes", len(doc))

	return doc, nil
}
