package service

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// ProjectService is the business-logic interface for projects.
type ProjectService interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, limit, offset int) ([]*model.ProjectSummary, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	// Delete removes the project and everything it owns, returning the
	// deleted record.
	Delete(ctx context.Context, id string) (*model.Project, error)
}
