package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/taskward/taskward-api/internal/domain"
	"github.com/taskward/taskward-api/internal/platform/logger"
	"github.com/taskward/taskward-api/internal/store"
)

// UserService provides user account operations.
type UserService interface {
	// Register persists a new user atomically and returns the stored entity
	// with its assigned ID and timestamps. The user's HashedPassword must
	// already be set. Returns store.ErrEmailExists when the email is taken.
	Register(ctx context.Context, user *domain.User) (*domain.User, error)
}

// userServiceImpl implements the UserService interface. It owns the
// transaction boundary: the store runs inside a transaction it begins on the
// shared database handle.
type userServiceImpl struct {
	db        *sql.DB
	userStore store.UserStore
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if the database handle or store dependency is nil.
func NewUserService(db *sql.DB, userStore store.UserStore, logger *slog.Logger) (UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db cannot be nil")
	}
	if userStore == nil {
		return nil, errors.New("user service: userStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		db:        db,
		userStore: userStore,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var stored *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		stored, err = s.userStore.WithTx(tx).Create(ctx, user)
		return err
	})
	if err != nil {
		// Sentinels (ErrEmailExists) pass through for the boundary to map.
		log.Warn("failed to register user",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", stored.ID))
	return stored, nil
}
