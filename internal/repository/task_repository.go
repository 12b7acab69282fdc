package repository

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// TaskRepository persists tasks.
type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Task, error)
	ListChildren(ctx context.Context, parentID string) ([]*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	// Delete removes the task and all its transitive subtasks.
	Delete(ctx context.Context, id string) error
}
