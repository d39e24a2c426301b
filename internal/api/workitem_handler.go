package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/workitem-api/internal/api/shared"
	"github.com/phrazzld/workitem-api/internal/service"
)

// WorkItemHandler handles work item related HTTP requests
type WorkItemHandler struct {
	workItems service.WorkItemService
	validator *validator.Validate
}

// NewWorkItemHandler creates a new WorkItemHandler
func NewWorkItemHandler(workItems service.WorkItemService) *WorkItemHandler {
	return &WorkItemHandler{
		workItems: workItems,
		validator: validator.New(),
	}
}

// Create handles POST /work-items requests. Submission is synchronous only up
// to persistence and dispatch; processing happens asynchronously, so the
// response carries just the generated identifier.
func (h *WorkItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		// A non-integral value (e.g. 3.5) surfaces as a JSON type error and
		// gets a field-level message, matching the other bound violations.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "value" {
			shared.RespondWithValidationError(w, r, []string{"Value must be a valid number"})
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, validationMessages(err))
		return
	}

	id, err := h.workItems.Create(r.Context(), *req.Value)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateWorkItemResponse{ID: id.String()})
}

// List handles GET /work-items requests.
func (h *WorkItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.workItems.List(r.Context())
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]WorkItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, workItemToResponse(item))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Get handles GET /work-items/{id} requests.
func (h *WorkItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// A malformed identifier cannot name any stored item.
		shared.RespondWithError(w, r, http.StatusNotFound, "Work item not found")
		return
	}

	item, err := h.workItems.Get(r.Context(), id)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, workItemToResponse(item))
}

// Delete handles DELETE /work-items/{id} requests. Processed work items are
// immutable and cannot be deleted.
func (h *WorkItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Work item not found")
		return
	}

	if err := h.workItems.Delete(r.Context(), id); err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validationMessages converts validator errors into the caller-facing
// field-level messages, reporting which bound was violated.
func validationMessages(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{"Validation error"}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, "Value is required")
		case "min":
			messages = append(messages, "Value must be at least 1")
		case "max":
			messages = append(messages, "Value must be at most 10")
		default:
			messages = append(messages, "Value is invalid")
		}
	}
	return messages
}
