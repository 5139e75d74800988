package store

import (
	"context"
	"time"

	"github.com/taskward/taskward-api/internal/domain"
)

// Sort field and direction values accepted by TaskSearchParams.
const (
	TaskOrderByID    = "id"
	TaskOrderByTitle = "title"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Pagination defaults applied when TaskSearchParams leaves them zero.
const (
	DefaultTaskListLimit = 10
)

// TaskSearchParams is the query contract for listing tasks. UserID is
// required and scopes every query; all other fields are optional filters.
type TaskSearchParams struct {
	// UserID scopes the result set to a single owner. Required.
	UserID string

	// Title, when non-empty, matches as a case-insensitive substring.
	Title string

	// Status, when non-empty, matches exactly.
	Status domain.TaskStatus

	// CreatedFrom and CreatedTo bound the creation timestamp (inclusive).
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// OrderBy is "id" or "title"; defaults to "id".
	OrderBy string

	// SortOrder is "asc" or "desc"; defaults to "desc" at the store.
	SortOrder string

	// Limit is the page size; defaults to 10. Bounds are enforced at the
	// API boundary, not here.
	Limit int

	// Offset is the number of rows to skip; defaults to 0.
	Offset int
}

// TaskList is the result envelope for a list query. Total counts every row
// matching the filter regardless of the pagination window. Offset is the
// next offset (input offset plus page size) on success, or the input offset
// when the query failed and the list was absorbed to empty.
type TaskList struct {
	Items  []*domain.Task
	Total  int
	Offset int
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Save persists a task. If the task carries an ID it is upserted under
	// that key; otherwise it is inserted and the store assigns the ID and
	// creation timestamp. Returns the stored entity. Store errors propagate
	// unchanged.
	Save(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GetByID retrieves a task by its ID. Returns ErrTaskNotFound if the
	// task does not exist; other store faults on this read path are logged
	// and also reported as absence so a single-read failure never surfaces
	// as a server fault.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Delete removes a task by ID. Returns ErrTaskNotFound when no row
	// matched; any other store error propagates.
	Delete(ctx context.Context, id string) error

	// List runs a scoped search and returns the paginated envelope. List
	// never fails: any store error during counting or fetching yields an
	// empty TaskList instead.
	List(ctx context.Context, params TaskSearchParams) (*TaskList, error)
}
