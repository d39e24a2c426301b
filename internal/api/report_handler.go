package api

import (
	"net/http"

	"github.com/phrazzld/workitem-api/internal/api/shared"
	"github.com/phrazzld/workitem-api/internal/service"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reports service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
	}
}

// GetReport handles GET /work-items/report requests. An empty population is
// a legitimate result here: the mapping is simply empty.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.reports.GenerateReport(r.Context())
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReportResponse{ReportData: buckets})
}

// GetReportPDF handles GET /work-items/report/pdf requests, returning the
// rendered report as a downloadable document. Unlike the JSON report, this
// path fails when no work items exist.
func (h *ReportHandler) GetReportPDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.reports.RenderDocument(r.Context())
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		// Headers are already sent; nothing to do but log.
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to write report", err)
	}
}
