package api

import (
	"time"

	"github.com/taskward/taskward-api/internal/domain"
)

// CreateTaskRequest represents the request body for creating a new task.
// The owner is stamped from the authenticated principal, never from the
// body, and new tasks always start in status NEW.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1"`
	Description string `json:"description" validate:"omitempty"`
}

// UpdateTaskRequest represents the request body for a partial task update.
// Absent fields are left untouched; present fields overwrite, including
// empty strings for title and description. Status must be one of the task
// status enum values.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty"`
	Description *string `json:"description" validate:"omitempty"`
	Status      *string `json:"status"      validate:"omitempty"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskListResponse is the paginated envelope for task listings. HasMore is
// computed from the request's offset and limit against the total count.
type TaskListResponse struct {
	Items      []TaskResponse `json:"items"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
	HasMore    bool           `json:"hasMore"`
	TotalCount int            `json:"totalCount"`
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name"  validate:"omitempty"`
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response for successful authentication.
type AuthResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

// UserResponse represents the response data for a user profile.
// Password material is never part of the response.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// userToResponse converts a domain.User to a UserResponse.
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
	}
}
