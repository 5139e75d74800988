package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskward/taskward-api/internal/domain"
	"github.com/taskward/taskward-api/internal/platform/logger"
	"github.com/taskward/taskward-api/internal/store"
)

// TaskServiceError wraps unexpected errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "update_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// Known sentinel errors pass through unwrapped so callers can match them
// with errors.Is directly.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrTaskNotOwned) {
		return err
	}
	if errors.Is(err, store.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	if errors.Is(err, domain.ErrInvalidTaskStatus) {
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// UpdateTaskFields carries the partial update for a task. A nil field means
// "not supplied" and is skipped; a pointer to the empty string is a valid
// overwrite for title and description.
type UpdateTaskFields struct {
	Title       *string
	Description *string
	Status      *string
}

// empty reports whether no field was supplied at all.
func (f UpdateTaskFields) empty() bool {
	return f.Title == nil && f.Description == nil && f.Status == nil
}

// TaskRepository defines the repository interface the service depends on.
// It mirrors store.TaskStore so the service stays store-agnostic.
type TaskRepository interface {
	Save(ctx context.Context, task *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params store.TaskSearchParams) (*store.TaskList, error)
}

// TaskService provides task-related operations. Every operation takes the
// caller's user ID as authenticated by the transport layer; ownership is
// enforced here, once, immediately after load, and never re-checked at the
// repository.
type TaskService interface {
	// CreateTask persists a new task and returns the stored entity with its
	// assigned ID and creation timestamp. The caller must have stamped the
	// authenticated user ID on the task already.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GetTask loads a task by ID on behalf of userID.
	// Returns ErrTaskNotFound if the task does not exist and ErrTaskNotOwned
	// if it belongs to a different user.
	GetTask(ctx context.Context, taskID, userID string) (*domain.Task, error)

	// UpdateTask applies a partial update to the task on behalf of userID.
	// Supplying no fields is a no-op that returns the task unchanged without
	// a write. Returns domain.ErrInvalidTaskStatus when the supplied status
	// is outside the enum; nothing is persisted in that case.
	UpdateTask(ctx context.Context, taskID, userID string, fields UpdateTaskFields) (*domain.Task, error)

	// DeleteTask removes a task on behalf of userID. Hard delete.
	// Returns ErrTaskNotFound or ErrTaskNotOwned like GetTask.
	DeleteTask(ctx context.Context, taskID, userID string) error

	// ListTasks runs a scoped search. Pure delegation: the repository scopes
	// every result to params.UserID and absorbs store failures to an empty
	// list, so this never fails.
	ListTasks(ctx context.Context, params store.TaskSearchParams) (*store.TaskList, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskRepo TaskRepository
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the repository dependency is nil.
func NewTaskService(taskRepo TaskRepository, logger *slog.Logger) (TaskService, error) {
	if taskRepo == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskRepo cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskRepo: taskRepo,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stored, err := s.taskRepo.Save(ctx, task)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", stored.ID),
		slog.String("user_id", stored.UserID))
	return stored, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	task, err := s.loadOwnedTask(ctx, "get_task", taskID, userID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID, userID string,
	fields UpdateTaskFields,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.loadOwnedTask(ctx, "update_task", taskID, userID)
	if err != nil {
		return nil, err
	}

	// An empty update is a no-op, not an error.
	if fields.empty() {
		log.Debug("update with no fields, returning task unchanged",
			slog.String("task_id", taskID))
		return task, nil
	}

	// Status is validated before any field is committed so an invalid value
	// never reaches the store.
	if fields.Status != nil {
		status, err := domain.ParseTaskStatus(*fields.Status)
		if err != nil {
			log.Warn("invalid task status supplied",
				slog.String("task_id", taskID),
				slog.String("status", *fields.Status))
			return nil, err
		}
		task.Status = status
	}

	if fields.Title != nil {
		task.Title = *fields.Title
	}
	if fields.Description != nil {
		task.Description = *fields.Description
	}

	stored, err := s.taskRepo.Save(ctx, task)
	if err != nil {
		log.Error("failed to persist task update",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return nil, NewTaskServiceError("update_task", "failed to save task", err)
	}

	log.Info("task updated",
		slog.String("task_id", stored.ID),
		slog.String("status", string(stored.Status)))
	return stored, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID, userID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.loadOwnedTask(ctx, "delete_task", taskID, userID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID),
		slog.String("user_id", userID))
	return nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	params store.TaskSearchParams,
) (*store.TaskList, error) {
	list, err := s.taskRepo.List(ctx, params)
	if err != nil {
		// The repository contract absorbs store failures; anything else is
		// a genuine programming fault worth surfacing.
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return list, nil
}

// loadOwnedTask loads a task and enforces ownership. Absence and ownership
// mismatch are reported as distinct sentinels so the transport layer can
// decide whether to reveal the difference.
func (s *taskServiceImpl) loadOwnedTask(
	ctx context.Context,
	operation, taskID, userID string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found",
				slog.String("operation", operation),
				slog.String("task_id", taskID))
			return nil, ErrTaskNotFound
		}
		log.Error("failed to load task",
			slog.String("error", err.Error()),
			slog.String("operation", operation),
			slog.String("task_id", taskID))
		return nil, NewTaskServiceError(operation, "failed to load task", err)
	}

	if task.UserID != userID {
		log.Warn("ownership check failed",
			slog.String("operation", operation),
			slog.String("task_id", taskID),
			slog.String("user_id", userID))
		return nil, ErrTaskNotOwned
	}

	return task, nil
}
