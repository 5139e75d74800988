// Package api contains the HTTP boundary: request/response models, handlers,
// and the mapping from domain outcomes to HTTP status codes. Handlers never
// expose internal error details; clients see sanitized messages only.
package api
