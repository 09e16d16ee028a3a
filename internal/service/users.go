package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/model"
	"github.com/erazemk/shareit/internal/store"
)

// UserService manages the user directory.
type UserService struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserService returns a UserService backed by db.
func NewUserService(db *sql.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger.Named("users")}
}

// UserUpdate carries the fields of a partial user update. Nil fields are
// left unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
}

// Create registers a new user.
func (s *UserService) Create(ctx context.Context, name, email string) (*model.User, error) {
	if err := model.ValidateEmail(email); err != nil {
		return nil, invalid("%s", err)
	}

	user, err := store.CreateUser(ctx, s.db, name, email)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, conflict("Email %s is already in use", email)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int64("user_id", user.ID))
	return user, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return requireUser(ctx, s.db, id)
}

// List returns all users ordered by ID.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return store.ListUsers(ctx, s.db)
}

// Update applies the non-nil fields of upd to a user.
func (s *UserService) Update(ctx context.Context, id int64, upd UserUpdate) (*model.User, error) {
	var user *model.User
	err := store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		u, err := requireUser(ctx, tx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Email != nil {
			if err := model.ValidateEmail(*upd.Email); err != nil {
				return invalid("%s", err)
			}
			u.Email = *upd.Email
		}

		err = store.UpdateUser(ctx, tx, u)
		if errors.Is(err, store.ErrDuplicate) {
			return conflict("Email %s is already in use", u.Email)
		}
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.Int64("user_id", id))
	return user, nil
}

// Delete removes a user. Users that still own items, bookings, comments or
// requests cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := requireUser(ctx, s.db, id); err != nil {
		return err
	}

	err := store.DeleteUser(ctx, s.db, id)
	if errors.Is(err, store.ErrReferenced) {
		return conflict("User %d still has items, bookings, comments or requests", id)
	}
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// requireUser fails with NotFound if no user has the given ID.
func requireUser(ctx context.Context, q store.Querier, id int64) (*model.User, error) {
	user, err := store.GetUser(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	if user == nil {
		return nil, notFound("User %d not found", id)
	}
	return user, nil
}
