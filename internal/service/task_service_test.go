package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskward/taskward-api/internal/domain"
	"github.com/taskward/taskward-api/internal/store"
)

const (
	ownerID    = "42"
	strangerID = "99"
)

// ownedTask returns a persisted-looking task belonging to ownerID.
func ownedTask() *domain.Task {
	return &domain.Task{
		ID:          "7",
		UserID:      ownerID,
		Title:       "Write quarterly report",
		Description: "Cover Q3 numbers.",
		Status:      domain.TaskStatusNew,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func strPtr(s string) *string {
	return &s
}

func newTestService(t *testing.T, repo TaskRepository) TaskService {
	t.Helper()
	svc, err := NewTaskService(repo, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestNewTaskService(t *testing.T) {
	_, err := NewTaskService(nil, slog.Default())
	require.Error(t, err)

	svc, err := NewTaskService(&MockTaskRepository{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTaskService_CreateTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		input, err := domain.NewTask(ownerID, "Write quarterly report", "Cover Q3 numbers.")
		require.NoError(t, err)

		stored := ownedTask()
		taskRepo.On("Save", mock.Anything, input).Return(stored, nil)

		service := newTestService(t, taskRepo)

		got, err := service.CreateTask(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, "7", got.ID)
		assert.Equal(t, ownerID, got.UserID)
		assert.Equal(t, domain.TaskStatusNew, got.Status)
		assert.False(t, got.CreatedAt.IsZero())
		taskRepo.AssertExpectations(t)
	})

	t.Run("save fails", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		input, err := domain.NewTask(ownerID, "Write quarterly report", "")
		require.NoError(t, err)

		expectedError := errors.New("connection refused")
		taskRepo.On("Save", mock.Anything, input).Return(nil, expectedError)

		service := newTestService(t, taskRepo)

		got, err := service.CreateTask(context.Background(), input)

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "failed to save task")
		assert.ErrorIs(t, err, expectedError)
	})
}

func TestTaskService_GetTask(t *testing.T) {
	t.Run("success for owner", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)

		service := newTestService(t, taskRepo)

		got, err := service.GetTask(context.Background(), "7", ownerID)

		require.NoError(t, err)
		assert.Equal(t, "7", got.ID)
		taskRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "404").Return(nil, store.ErrTaskNotFound)

		service := newTestService(t, taskRepo)

		got, err := service.GetTask(context.Background(), "404", ownerID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("owned by another user", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)

		service := newTestService(t, taskRepo)

		got, err := service.GetTask(context.Background(), "7", strangerID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrTaskNotOwned)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	t.Run("updates supplied fields", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)
		taskRepo.On("Save", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.ID == "7" &&
				task.Title == "Updated title" &&
				task.Status == domain.TaskStatusDone &&
				task.Description == "Cover Q3 numbers."
		})).Return(&domain.Task{
			ID:          "7",
			UserID:      ownerID,
			Title:       "Updated title",
			Description: "Cover Q3 numbers.",
			Status:      domain.TaskStatusDone,
		}, nil)

		service := newTestService(t, taskRepo)

		got, err := service.UpdateTask(context.Background(), "7", ownerID, UpdateTaskFields{
			Title:  strPtr("Updated title"),
			Status: strPtr("DONE"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Updated title", got.Title)
		assert.Equal(t, domain.TaskStatusDone, got.Status)
		// Description was not supplied and must survive untouched
		assert.Equal(t, "Cover Q3 numbers.", got.Description)
		taskRepo.AssertExpectations(t)
	})

	t.Run("empty update is a no-op without a write", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)

		service := newTestService(t, taskRepo)

		got, err := service.UpdateTask(context.Background(), "7", ownerID, UpdateTaskFields{})

		require.NoError(t, err)
		assert.Equal(t, "Write quarterly report", got.Title)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("empty string overwrites are valid", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)
		taskRepo.On("Save", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.Description == ""
		})).Return(&domain.Task{ID: "7", UserID: ownerID, Title: "Write quarterly report"}, nil)

		service := newTestService(t, taskRepo)

		_, err := service.UpdateTask(context.Background(), "7", ownerID, UpdateTaskFields{
			Description: strPtr(""),
		})

		require.NoError(t, err)
		taskRepo.AssertExpectations(t)
	})

	t.Run("invalid status never reaches the store", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)

		service := newTestService(t, taskRepo)

		got, err := service.UpdateTask(context.Background(), "7", ownerID, UpdateTaskFields{
			Title:  strPtr("Updated title"),
			Status: strPtr("BOGUS"),
		})

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("not owned", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)

		service := newTestService(t, taskRepo)

		_, err := service.UpdateTask(context.Background(), "7", strangerID, UpdateTaskFields{
			Title: strPtr("hijacked"),
		})

		assert.ErrorIs(t, err, ErrTaskNotOwned)
		taskRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "404").Return(nil, store.ErrTaskNotFound)

		service := newTestService(t, taskRepo)

		_, err := service.UpdateTask(context.Background(), "404", ownerID, UpdateTaskFields{
			Title: strPtr("whatever"),
		})

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	t.Run("success for owner", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)
		taskRepo.On("Delete", mock.Anything, "7").Return(nil)

		service := newTestService(t, taskRepo)

		err := service.DeleteTask(context.Background(), "7", ownerID)

		require.NoError(t, err)
		taskRepo.AssertExpectations(t)
	})

	t.Run("not owned", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)

		service := newTestService(t, taskRepo)

		err := service.DeleteTask(context.Background(), "7", strangerID)

		assert.ErrorIs(t, err, ErrTaskNotOwned)
		taskRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "404").Return(nil, store.ErrTaskNotFound)

		service := newTestService(t, taskRepo)

		err := service.DeleteTask(context.Background(), "404", ownerID)

		assert.ErrorIs(t, err, ErrTaskNotFound)
		taskRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("delete races with removal", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		taskRepo.On("GetByID", mock.Anything, "7").Return(ownedTask(), nil)
		taskRepo.On("Delete", mock.Anything, "7").Return(store.ErrTaskNotFound)

		service := newTestService(t, taskRepo)

		err := service.DeleteTask(context.Background(), "7", ownerID)

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	t.Run("delegates to the repository", func(t *testing.T) {
		taskRepo := &MockTaskRepository{}
		params := store.TaskSearchParams{
			UserID: ownerID,
			Status: domain.TaskStatusNew,
			Limit:  10,
			Offset: 0,
		}
		expected := &store.TaskList{
			Items:  []*domain.Task{ownedTask()},
			Total:  1,
			Offset: 10,
		}
		taskRepo.On("List", mock.Anything, params).Return(expected, nil)

		service := newTestService(t, taskRepo)

		got, err := service.ListTasks(context.Background(), params)

		require.NoError(t, err)
		assert.Equal(t, expected, got)
		taskRepo.AssertExpectations(t)
	})
}
