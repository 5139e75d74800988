package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/taskward/taskward-api/internal/api/middleware"
	"github.com/taskward/taskward-api/internal/api/shared"
	"github.com/taskward/taskward-api/internal/domain"
	"github.com/taskward/taskward-api/internal/service"
	"github.com/taskward/taskward-api/internal/store"
)

// Pagination bounds enforced at the boundary.
const (
	defaultListLimit = 10
	maxListLimit     = 500
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	// The authenticated principal owns the task; any user ID in the body is
	// ignored.
	task, err := domain.NewTask(userID, req.Title, req.Description)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	stored, err := h.taskService.CreateTask(r.Context(), task)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(stored))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID := chi.URLParam(r, "id")

	task, err := h.taskService.GetTask(r.Context(), taskID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID := chi.URLParam(r, "id")

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	fields := service.UpdateTaskFields{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, userID, fields)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID := chi.URLParam(r, "id")

	if err := h.taskService.DeleteTask(r.Context(), taskID, userID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTasks handles GET /api/tasks requests.
// The paginated envelope reports hasMore against the request's own offset
// and limit, not the store's next-offset.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	params, limit, offset, errMsg := parseListQuery(r, userID)
	if errMsg != "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, errMsg)
		return
	}

	list, err := h.taskService.ListTasks(r.Context(), *params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	items := make([]TaskResponse, 0, len(list.Items))
	for _, task := range list.Items {
		items = append(items, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Items:      items,
		Limit:      limit,
		Offset:     offset,
		HasMore:    list.Total > offset+limit,
		TotalCount: list.Total,
	})
}

// parseListQuery validates the list query parameters and builds the search
// params. Returns a non-empty message describing the first invalid
// parameter, if any.
func parseListQuery(r *http.Request, userID string) (*store.TaskSearchParams, int, int, string) {
	q := r.URL.Query()

	limit := defaultListLimit
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			return nil, 0, 0, "limit must be an integer between 1 and 500"
		}
		limit = parsed
	}

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return nil, 0, 0, "offset must be a non-negative integer"
		}
		offset = parsed
	}

	orderBy := q.Get("orderBy")
	switch orderBy {
	case "", store.TaskOrderByID, store.TaskOrderByTitle:
	default:
		return nil, 0, 0, "orderBy must be one of: id, title"
	}

	sortOrder := q.Get("sortOrder")
	switch sortOrder {
	case "", store.SortOrderAsc, store.SortOrderDesc:
	default:
		return nil, 0, 0, "sortOrder must be one of: asc, desc"
	}

	params := store.TaskSearchParams{
		UserID:    userID,
		Title:     q.Get("title"),
		OrderBy:   orderBy,
		SortOrder: sortOrder,
		Limit:     limit,
		Offset:    offset,
	}

	if raw := q.Get("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return nil, 0, 0, "status must be one of the task status values"
		}
		params.Status = status
	}

	if raw := q.Get("createdFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, 0, 0, "createdFrom must be an RFC 3339 timestamp"
		}
		params.CreatedFrom = &from
	}

	if raw := q.Get("createdTo"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, 0, 0, "createdTo must be an RFC 3339 timestamp"
		}
		params.CreatedTo = &to
	}

	return &params, limit, offset, ""
}
