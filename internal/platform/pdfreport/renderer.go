// Package pdfreport renders the work item report as a PDF document.
package pdfreport

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/phrazzld/workitem-api/internal/service"
)

// Renderer implements service.ReportRenderer using the fpdf document engine.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a new PDF report renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		logger: logger.With("component", "pdf_renderer"),
	}
}

// Ensure Renderer implements service.ReportRenderer
var _ service.ReportRenderer = (*Renderer)(nil)

// Render implements service.ReportRenderer.Render. It produces a single-page
// table of report rows: one line per distinct value with its total and
// processed counts.
func (r *Renderer) Render(ctx context.Context, rows []service.ReportRow) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Work Item Report")
	pdf.Ln(14)

	const (
		colWidth  = 45.0
		rowHeight = 8.0
	)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colWidth, rowHeight, "Value", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidth, rowHeight, "Total Items", "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidth, rowHeight, "Processed Items", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(colWidth, rowHeight, strconv.Itoa(row.Value), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidth, rowHeight, strconv.Itoa(row.TotalItems), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidth, rowHeight, strconv.Itoa(row.ProcessedItems), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF output: %w", err)
	}

	r.logger.Debug("rendered report PDF",
		"row_count", len(rows),
		"size_bytes", buf.Len())

	return buf.Bytes(), nil
}
