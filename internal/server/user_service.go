package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/types"
)

// UserStore is the part of db.Store the account operations need.
type UserStore interface {
	CreateUser(ctx context.Context, u *db.User) (*db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	db             UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new account. The request must already be validated.
func (s *UserService) Register(ctx context.Context, req *types.SignupRequest) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.db.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}

	holder, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if holder != nil {
		return nil, &ErrUsernameTaken{Username: username}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.db.CreateUser(ctx, &db.User{
		Username:     username,
		Email:        email,
		Role:         req.Role,
		PasswordHash: passwordHash,
	})
	// Lost a race with a concurrent signup
	if errors.Is(err, db.ErrUsernameTaken) {
		return nil, &ErrUsernameTaken{Username: username}
	}
	if errors.Is(err, db.ErrDuplicate) {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created.Public(), nil
}

// Login authenticates by email, falling back to username for PSID logins.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	key := req.Key()

	dbUser, err := s.db.GetUserByEmail(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if dbUser == nil {
		dbUser, err = s.db.GetUserByUsername(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get user by username: %w", err)
		}
	}

	// Same error for an unknown account and a wrong password
	if dbUser == nil || !s.passwordConfig.VerifyPassword(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return dbUser.Public(), nil
}

// GetUser returns the public profile of userID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	dbUser, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return dbUser.Public(), nil
}
