package service

import (
	"context"
	"fmt"

	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/repository"
)

// UserService handles player registration and lookup.
type UserService struct {
	users *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates the user or, when the email is already registered, updates
// the display name and returns the existing user. Safe to call repeatedly.
func (s *UserService) Register(ctx context.Context, req *model.RegisterUserRequest) (*model.User, error) {
	u := &model.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}
	if err := s.users.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// GetByEmail looks a user up by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapNoRows(err, ErrUserNotFound)
	}
	return u, nil
}
