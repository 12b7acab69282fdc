package service

import (
	"context"
	"errors"
	"strings"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// ProjectServiceImpl is the ProjectService implementation.
type ProjectServiceImpl struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a ProjectServiceImpl.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo, userRepo: userRepo}
}

// GetByID fetches a project by id.
func (s *ProjectServiceImpl) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// List returns project summaries ordered by creation time.
func (s *ProjectServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.ProjectSummary, error) {
	return s.projectRepo.List(ctx, limit, offset)
}

// validateProject checks the fields every write must satisfy.
func validateProject(p *model.Project) error {
	var v model.ValidationError
	if strings.TrimSpace(p.Name) == "" {
		v.Add("name", "required")
	} else if len(p.Name) > 255 {
		v.Add("name", "at most 255 characters")
	}
	if !model.ValidProjectStatus(p.Status) {
		v.Add("status", "unknown status")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		v.Add("end_date", "must not be before start_date")
	}
	if p.Budget != nil && p.Budget.IsNegative() {
		v.Add("budget", "must not be negative")
	}
	if len(p.Currency) != 3 {
		v.Add("currency", "must be a 3-letter code")
	}
	return v.Err()
}

// Create validates and persists a new project. Status defaults to
// "planning" and currency to "USD"; the owner must exist.
func (s *ProjectServiceImpl) Create(ctx context.Context, project *model.Project) error {
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if project.Currency == "" {
		project.Currency = "USD"
	}

	var v model.ValidationError
	if project.OwnerID == "" {
		v.Add("owner_id", "required")
	} else if _, err := s.userRepo.GetByID(ctx, project.OwnerID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		v.Add("owner_id", "no such user")
	}
	if err := validateProject(project); err != nil {
		var ve *model.ValidationError
		errors.As(err, &ve)
		v.Fields = append(v.Fields, ve.Fields...)
	}
	if err := v.Err(); err != nil {
		return err
	}

	return s.projectRepo.Create(ctx, project)
}

// Update applies a partial update and returns the updated project.
func (s *ProjectServiceImpl) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.StartDate != nil {
		project.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		project.EndDate = patch.EndDate
	}
	if patch.Budget != nil {
		project.Budget = patch.Budget
	}
	if patch.Currency != nil {
		project.Currency = *patch.Currency
	}
	if patch.OwnerID != nil {
		if _, err := s.userRepo.GetByID(ctx, *patch.OwnerID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			var v model.ValidationError
			v.Add("owner_id", "no such user")
			return nil, v.Err()
		}
		project.OwnerID = *patch.OwnerID
	}

	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project with its tasks, budgets and scoped APUs, and
// returns the deleted record.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return project, nil
}
