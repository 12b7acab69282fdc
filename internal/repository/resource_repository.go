package repository

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// ResourceRepository persists catalog resources.
type ResourceRepository interface {
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	List(ctx context.Context, limit, offset int) ([]*model.Resource, error)
	Create(ctx context.Context, resource *model.Resource) error
	Update(ctx context.Context, resource *model.Resource) error
	// Delete removes a resource; returns ErrConflict while any APU item references it.
	Delete(ctx context.Context, id string) error
}
