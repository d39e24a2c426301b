package api

import (
	"github.com/phrazzld/workitem-api/internal/domain"
	"github.com/phrazzld/workitem-api/internal/service"
)

// CreateWorkItemRequest represents the request body for submitting a work item.
// The value is a pointer so a missing field is distinguishable from zero.
type CreateWorkItemRequest struct {
	Value *int `json:"value" validate:"required,min=1,max=10"`
}

// CreateWorkItemResponse carries the generated identifier of a submitted item.
type CreateWorkItemResponse struct {
	ID string `json:"id"`
}

// WorkItemResponse represents the response data for a work item.
type WorkItemResponse struct {
	ID        string `json:"id"`
	Value     int    `json:"value"`
	Processed bool   `json:"processed"`
	Result    *int   `json:"result,omitempty"`
}

// ReportResponse wraps the value-keyed report buckets.
type ReportResponse struct {
	ReportData map[int]service.ReportBucket `json:"report_data"`
}

// workItemToResponse converts a domain.WorkItem to a WorkItemResponse.
func workItemToResponse(item *domain.WorkItem) WorkItemResponse {
	return WorkItemResponse{
		ID:        item.ID.String(),
		Value:     item.Value,
		Processed: item.Processed,
		Result:    item.Result,
	}
}
