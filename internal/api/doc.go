// Package api implements the HTTP boundary of the work item service:
// request DTOs and validation, chi route registration, and the mapping of
// internal errors onto HTTP status codes and safe client messages.
package api
