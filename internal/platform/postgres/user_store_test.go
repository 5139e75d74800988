package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskward/taskward-api/internal/domain"
	"github.com/taskward/taskward-api/internal/store"
)

func newMockUserStore(t *testing.T) (*PostgresUserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresUserStore(db, nil), mock
}

var userColumns = []string{
	"id", "email", "hashed_password", "first_name", "last_name", "created_at", "updated_at",
}

func hashedUser() *domain.User {
	return &domain.User{
		Email:          "jane@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:      "Jane",
		LastName:       "Doe",
	}
}

func TestUserStoreCreate(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("insert assigns id and timestamps", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		mock.ExpectQuery("INSERT INTO users").
			WithArgs("jane@example.com", "$2a$10$abcdefghijklmnopqrstuv", "Jane", "Doe").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(42), createdAt, createdAt))

		stored, err := userStore.Create(context.Background(), hashedUser())
		require.NoError(t, err)
		assert.Equal(t, "42", stored.ID)
		assert.Equal(t, createdAt, stored.CreatedAt)
		assert.Empty(t, stored.Password)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email maps to ErrEmailExists", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		uniqueErr := &pgconn.PgError{Code: pgUniqueViolationCode}
		mock.ExpectQuery("INSERT INTO users").WillReturnError(uniqueErr)

		_, err := userStore.Create(context.Background(), hashedUser())
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("other store errors propagate", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		storeErr := errors.New("connection refused")
		mock.ExpectQuery("INSERT INTO users").WillReturnError(storeErr)

		_, err := userStore.Create(context.Background(), hashedUser())
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("missing hash rejected before the query", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		user := hashedUser()
		user.HashedPassword = ""
		user.Password = "password123"

		_, err := userStore.Create(context.Background(), user)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserStoreGetByEmail(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(int64(42), "jane@example.com", "hash", "Jane", "Doe", createdAt, createdAt))

		user, err := userStore.GetByEmail(context.Background(), "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "42", user.ID)
		assert.Equal(t, "hash", user.HashedPassword)
	})

	t.Run("absent row is not found", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := userStore.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("store errors propagate", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		storeErr := errors.New("connection refused")
		mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(storeErr)

		_, err := userStore.GetByEmail(context.Background(), "jane@example.com")
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestUserStoreGetByID(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(userColumns).
				// NULL names read as empty strings
				AddRow(int64(42), "jane@example.com", "hash", nil, nil, createdAt, createdAt))

		user, err := userStore.GetByID(context.Background(), "42")
		require.NoError(t, err)
		assert.Equal(t, "42", user.ID)
		assert.Empty(t, user.FirstName)
		assert.Empty(t, user.LastName)
	})

	t.Run("absent row is not found", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(int64(42)).
			WillReturnError(sql.ErrNoRows)

		_, err := userStore.GetByID(context.Background(), "42")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("non-numeric id is absence without a query", func(t *testing.T) {
		userStore, mock := newMockUserStore(t)

		_, err := userStore.GetByID(context.Background(), "not-a-number")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewPostgresUserStoreNilDB(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		NewPostgresUserStore(nil, nil)
	})
}
