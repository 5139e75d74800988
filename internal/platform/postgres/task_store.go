package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskward/taskward-api/internal/domain"
	"github.com/taskward/taskward-api/internal/platform/logger"
	"github.com/taskward/taskward-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Save implements store.TaskStore.Save
// A task carrying an ID is upserted under that key; a task without one is
// inserted and the database assigns the id and creation timestamp.
// Store errors propagate unchanged so the caller can decide how to react.
func (s *PostgresTaskStore) Save(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during save",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID))
		return nil, err
	}

	ownerID, err := strconv.ParseInt(task.UserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: user ID %q is not numeric", store.ErrInvalidEntity, task.UserID)
	}

	var row *sql.Row
	if task.ID != "" {
		taskID, err := strconv.ParseInt(task.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: task ID %q is not numeric", store.ErrInvalidEntity, task.ID)
		}

		query := `
			INSERT INTO tasks (id, user_id, title, description, task_status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title,
			    description = EXCLUDED.description,
			    task_status = EXCLUDED.task_status
			RETURNING id, created_at
		`
		row = s.db.QueryRowContext(ctx, query, taskID, ownerID, task.Title, task.Description, string(task.Status))
	} else {
		query := `
			INSERT INTO tasks (user_id, title, description, task_status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`
		row = s.db.QueryRowContext(ctx, query, ownerID, task.Title, task.Description, string(task.Status))
	}

	stored := *task
	var storedID int64
	if err := row.Scan(&storedID, &stored.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Warn("foreign key violation during task save",
				slog.String("error", err.Error()),
				slog.String("user_id", task.UserID))
			return nil, fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to save task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID),
			slog.String("user_id", task.UserID))
		return nil, err
	}
	stored.ID = strconv.FormatInt(storedID, 10)

	log.Info("task saved successfully",
		slog.String("task_id", stored.ID),
		slog.String("user_id", stored.UserID),
		slog.String("status", string(stored.Status)))
	return &stored, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist. Any other fault
// on this read path is logged and reported as absence as well: a failed
// single read is indistinguishable from a missing row to callers.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		log.Debug("non-numeric task ID treated as absent", slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	query := `
		SELECT id, user_id, title, description, task_status, created_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound when no row matched the ID; any other store
// error propagates.
func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		log.Debug("non-numeric task ID treated as absent for delete", slog.String("task_id", id))
		return store.ErrTaskNotFound
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.String("task_id", id))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id))
	return nil
}

// List implements store.TaskStore.List
// It counts every row matching the filter independently of the pagination
// window, then fetches the requested page. List never returns an error: any
// fault during counting or fetching absorbs to an empty result carrying the
// input offset. On success the returned Offset is the next offset (input
// offset plus page size).
func (s *PostgresTaskStore) List(ctx context.Context, params store.TaskSearchParams) (*store.TaskList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit := params.Limit
	if limit <= 0 {
		limit = store.DefaultTaskListLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	empty := &store.TaskList{Items: []*domain.Task{}, Total: 0, Offset: offset}

	where, args, err := buildTaskFilter(params)
	if err != nil {
		log.Error("failed to build task list filter",
			slog.String("error", err.Error()),
			slog.String("user_id", params.UserID))
		return empty, nil
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", params.UserID))
		return empty, nil
	}

	pageQuery := fmt.Sprintf(`
		SELECT id, user_id, title, description, task_status, created_at
		FROM tasks
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, where, orderClause(params), len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, pageQuery, append(args, limit, offset)...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", params.UserID))
		return empty, nil
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.String("user_id", params.UserID))
			return empty, nil
		}
		items = append(items, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()),
			slog.String("user_id", params.UserID))
		return empty, nil
	}

	log.Debug("listed tasks",
		slog.String("user_id", params.UserID),
		slog.Int("count", len(items)),
		slog.Int("total", total))

	return &store.TaskList{
		Items:  items,
		Total:  total,
		Offset: offset + limit,
	}, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask maps a tasks row onto the domain entity. Numeric keys become
// their decimal string form, a NULL status reads as NEW, and a NULL
// description reads as the empty string.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		id          int64
		userID      int64
		title       string
		description sql.NullString
		status      sql.NullString
		task        domain.Task
	)

	if err := row.Scan(&id, &userID, &title, &description, &status, &task.CreatedAt); err != nil {
		return nil, err
	}

	task.ID = strconv.FormatInt(id, 10)
	task.UserID = strconv.FormatInt(userID, 10)
	task.Title = title
	task.Description = description.String
	if status.Valid && status.String != "" {
		task.Status = domain.TaskStatus(status.String)
	} else {
		task.Status = domain.TaskStatusNew
	}

	return &task, nil
}

// buildTaskFilter builds the WHERE clause and arguments for a list query.
// The owner scope is always present; title matches as a case-insensitive
// substring, status as an exact value, and the created-at range bounds are
// inclusive.
func buildTaskFilter(params store.TaskSearchParams) (string, []any, error) {
	ownerID, err := strconv.ParseInt(params.UserID, 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: user ID %q is not numeric", store.ErrInvalidEntity, params.UserID)
	}

	clauses := []string{"user_id = $1"}
	args := []any{ownerID}

	if params.Title != "" {
		args = append(args, params.Title)
		clauses = append(clauses, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", len(args)))
	}

	if params.Status != "" {
		args = append(args, string(params.Status))
		clauses = append(clauses, fmt.Sprintf("task_status = $%d", len(args)))
	}

	if params.CreatedFrom != nil {
		args = append(args, *params.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if params.CreatedTo != nil {
		args = append(args, *params.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}

// orderClause resolves the sort column and direction. Only the two
// whitelisted columns are ever interpolated; direction defaults to
// descending when unspecified.
func orderClause(params store.TaskSearchParams) string {
	column := "id"
	if params.OrderBy == store.TaskOrderByTitle {
		column = "title"
	}

	direction := "DESC"
	if params.SortOrder == store.SortOrderAsc {
		direction = "ASC"
	}

	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}
