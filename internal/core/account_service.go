package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shopfront.dev/ecommerce-backend/internal/auth"
	"shopfront.dev/ecommerce-backend/internal/store"
)

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	CreateUser(ctx context.Context, username, password string) (*store.User, error)
	ListUsers(ctx context.Context) ([]store.User, error)
}

type AccountService struct {
	users  UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

func NewAccountService(users UserStore, hasher auth.PasswordHasher, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a user after checking the username is free. The check is
// not atomic with the insert; the UNIQUE constraint on users.username catches
// a concurrent registration, which then reports ErrRegistrationFailed.
func (s *AccountService) Register(ctx context.Context, username, password string) (*store.User, error) {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		s.logger.Error("registration lookup failed", "username", username, "error", err)
		return nil, ErrRegistrationFailed
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to encode password", "username", username, "error", err)
		return nil, ErrRegistrationFailed
	}

	user, err := s.users.CreateUser(ctx, username, stored)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.logger.Warn("username registered concurrently", "username", username)
		} else {
			s.logger.Error("failed to create user", "username", username, "error", err)
		}
		return nil, ErrRegistrationFailed
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login returns the user whose stored password matches. Unknown usernames and
// wrong passwords are reported separately.
func (s *AccountService) Login(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	ok, err := s.hasher.Compare(user.Password, password)
	if err != nil {
		s.logger.Warn("stored password could not be verified", "user_id", user.ID, "error", err)
		return nil, ErrInvalidPassword
	}
	if !ok {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]store.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
