package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/workitem-api/internal/api/middleware"
)

// NewRouter assembles the HTTP routes for the work item API.
func NewRouter(workItems *WorkItemHandler, reports *ReportHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	r.Route("/work-items", func(r chi.Router) {
		r.Get("/", workItems.List)
		r.Post("/", workItems.Create)

		// Fixed paths must be registered before the {id} wildcard.
		r.Get("/report", reports.GetReport)
		r.Get("/report/pdf", reports.GetReportPDF)

		r.Get("/{id}", workItems.Get)
		r.Delete("/{id}", workItems.Delete)
	})

	return r
}
