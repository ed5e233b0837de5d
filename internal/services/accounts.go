package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"duit/internal/auth"
	"duit/internal/core"
	"duit/internal/storage"
)

// AccountService handles registration and credential verification.
type AccountService struct {
	storage *storage.SQLiteRepository
}

func NewAccountService(storage *storage.SQLiteRepository) *AccountService {
	return &AccountService{storage: storage}
}

// Register creates a new account with a bcrypt hash of password.
func (s *AccountService) Register(ctx context.Context, username, password string) (core.User, error) {
	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, username, hash)
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "Registered user", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Authenticate checks username and password against the stored hash.
// An unknown username and a wrong password both come back as
// core.ErrUnauthenticated so callers cannot tell the cases apart.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrUnauthenticated
		}
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return core.User{}, core.ErrUnauthenticated
	}

	return user, nil
}

// GetUser returns the account for id.
func (s *AccountService) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.storage.GetUserByID(ctx, id)
}
