package service

import (
	"context"
	"strings"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// UserService is the business-logic interface for users.
type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id string) (*model.User, error)
}

// UserServiceImpl is the UserService implementation.
type UserServiceImpl struct {
	userRepo repository.UserRepository
}

// NewUserService creates a UserServiceImpl.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

// GetByID fetches a user by id.
func (s *UserServiceImpl) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns users ordered by creation time.
func (s *UserServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// Create validates and persists a new user. Role defaults to "user",
// new accounts start active.
func (s *UserServiceImpl) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.IsActive = true

	var v model.ValidationError
	if strings.TrimSpace(user.Username) == "" {
		v.Add("username", "required")
	}
	if strings.TrimSpace(user.Email) == "" {
		v.Add("email", "required")
	} else if !strings.Contains(user.Email, "@") {
		v.Add("email", "invalid")
	}
	if !model.ValidRole(user.Role) {
		v.Add("role", "unknown role")
	}
	if err := v.Err(); err != nil {
		return err
	}

	return s.userRepo.Create(ctx, user)
}

// Update applies a partial update and returns the updated user.
func (s *UserServiceImpl) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}

	var v model.ValidationError
	if strings.TrimSpace(user.Username) == "" {
		v.Add("username", "required")
	}
	if strings.TrimSpace(user.Email) == "" {
		v.Add("email", "required")
	}
	if !model.ValidRole(user.Role) {
		v.Add("role", "unknown role")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user and returns the deleted record. Users that still
// own projects are rejected with ErrConflict.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}
