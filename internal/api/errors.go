package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/workitem-api/internal/domain"
	"github.com/phrazzld/workitem-api/internal/service"
	"github.com/phrazzld/workitem-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrValueOutOfRange),
		errors.Is(err, domain.ErrWorkItemProcessed):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrWorkItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// The rendered report is unavailable until items exist; recoverable.
	case errors.Is(err, service.ErrEmptyReportData):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrValueOutOfRange):
		return "Value must be between 1 and 10"

	case errors.Is(err, domain.ErrWorkItemProcessed):
		return "Work item has been processed and cannot be deleted"

	case errors.Is(err, service.ErrWorkItemNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Work item not found"

	case errors.Is(err, service.ErrEmptyReportData):
		return "No work items found for generating the report"

	case errors.Is(err, service.ErrReportRenderFailed):
		return "Failed to generate PDF report"

	default:
		return "An unexpected error occurred"
	}
}
