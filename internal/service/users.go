package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/auth"
	"ipal-monitor/internal/config"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// UserInput is the body of a user creation request.
type UserInput struct {
	Username string     `json:"username" validate:"required,min=3,max=50"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Role     model.Role `json:"role" validate:"required,oneof=admin operator viewer"`
	Email    string     `json:"email" validate:"omitempty,email,max=100"`
}

// ImportResult reports the outcome of a bulk user import.
type ImportResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// UserService manages dashboard accounts.
type UserService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewUserService creates a UserService.
func NewUserService(st *store.Store, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  st,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Authenticate checks credentials and returns the user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.Warn().Str("username", username).Msg("failed login attempt")
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Create validates in and stores a new user.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleViewer
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(ErrInvalidUser, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		Email:        in.Email,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx)
}

// Import creates every seed whose username is not taken yet.
func (s *UserService) Import(ctx context.Context, seeds []*config.UserSeed) (*ImportResult, error) {
	result := &ImportResult{Created: make([]string, 0), Skipped: make([]string, 0)}

	for _, seed := range seeds {
		_, err := s.Create(ctx, UserInput{
			Username: seed.Username,
			Password: seed.Password,
			Role:     seed.Role,
			Email:    seed.Email,
		})
		switch {
		case errors.Is(err, ErrDuplicateUser):
			result.Skipped = append(result.Skipped, seed.Username)
		case err != nil:
			return result, fmt.Errorf("failed to import user %q: %w", seed.Username, err)
		default:
			result.Created = append(result.Created, seed.Username)
		}
	}
	return result, nil
}
