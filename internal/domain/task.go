package domain

import (
	"errors"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusNew        TaskStatus = "NEW"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusError      TaskStatus = "ERROR"
	TaskStatusRejected   TaskStatus = "REJECTED"
	TaskStatusDeleted    TaskStatus = "DELETED"
)

// Common validation errors for Task
var (
	ErrEmptyTaskUserID   = errors.New("task user ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// Task represents a single unit of work owned by exactly one user.
// The ID is the string form of the numeric surrogate key assigned by
// the store; it is empty until the task is first persisted.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTask creates a new Task owned by the given user with status NEW.
// The ID and CreatedAt are left for the store to assign on first save.
// Returns an error if validation fails.
func NewTask(userID, title, description string) (*Task, error) {
	task := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      TaskStatusNew,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == "" {
		return ErrEmptyTaskUserID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsValid reports whether the status is one of the six enumerated values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNew, TaskStatusProcessing, TaskStatusDone,
		TaskStatusError, TaskStatusRejected, TaskStatusDeleted:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a raw string into a TaskStatus.
// Returns ErrInvalidTaskStatus for anything outside the enum; values are
// never coerced.
func ParseTaskStatus(value string) (TaskStatus, error) {
	status := TaskStatus(value)
	if !status.IsValid() {
		return "", ErrInvalidTaskStatus
	}
	return status, nil
}
