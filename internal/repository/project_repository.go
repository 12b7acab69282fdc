package repository

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, limit, offset int) ([]*model.ProjectSummary, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	// Delete removes the project and everything it exclusively owns: tasks,
	// budgets with their items, and project-scoped APUs with their items.
	Delete(ctx context.Context, id string) error
}
