// Package service provides application-level services implementing the
// business rules of the task tracker.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is(); the API layer maps them to HTTP
// status codes and never exposes wrapped internals.
var (
	// ErrTaskNotFound indicates the referenced task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotOwned indicates the task exists but is owned by a different
	// user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrTaskNotOwned = errors.New("task is owned by another user")
)
