// Package service implements the application's business operations over the
// store and queue abstractions: work item submission and lifecycle, and
// report aggregation.
package service
