package repository

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// DB is the liveness surface the health endpoint needs.
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository persists users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	// Delete removes a user; returns ErrConflict while the user still owns projects.
	Delete(ctx context.Context, id string) error
}
