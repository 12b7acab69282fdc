package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// BudgetService is the business-logic interface for budgets. Totals are a
// two-level derived aggregation (item quantity × APU total cost, which is
// itself derived from APU items) recomputed on every read.
type BudgetService interface {
	GetByID(ctx context.Context, id string) (*model.Budget, error)
	ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Budget, error)
	Create(ctx context.Context, budget *model.Budget, items []model.BudgetItemInput) error
	Update(ctx context.Context, id string, patch model.BudgetPatch) (*model.Budget, error)
	// Delete removes the budget with its items and returns the deleted record.
	Delete(ctx context.Context, id string) (*model.Budget, error)

	AddItem(ctx context.Context, budgetID string, in model.BudgetItemInput) (*model.BudgetItem, error)
	UpdateItem(ctx context.Context, budgetID, itemID string, patch model.BudgetItemPatch) (*model.BudgetItem, error)
	RemoveItem(ctx context.Context, budgetID, itemID string) error
}

// BudgetServiceImpl is the BudgetService implementation.
type BudgetServiceImpl struct {
	budgetRepo  repository.BudgetRepository
	apuRepo     repository.APURepository
	projectRepo repository.ProjectRepository
}

// NewBudgetService creates a BudgetServiceImpl.
func NewBudgetService(budgetRepo repository.BudgetRepository, apuRepo repository.APURepository, projectRepo repository.ProjectRepository) BudgetService {
	return &BudgetServiceImpl{budgetRepo: budgetRepo, apuRepo: apuRepo, projectRepo: projectRepo}
}

// resolveAPUs loads the APU behind every item so totals can be derived.
func (s *BudgetServiceImpl) resolveAPUs(ctx context.Context, budget *model.Budget) error {
	for _, item := range budget.Items {
		apu, err := s.apuRepo.GetByID(ctx, item.APUID)
		if err != nil {
			return fmt.Errorf("resolve apu %s for budget item %s: %w", item.APUID, item.ID, err)
		}
		item.APU = apu
	}
	budget.Recalculate()
	return nil
}

// GetByID fetches a budget with items, resolved APUs and fresh totals.
func (s *BudgetServiceImpl) GetByID(ctx context.Context, id string) (*model.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resolveAPUs(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// ListByProjectID returns a project's budgets with fresh totals. The
// project must exist.
func (s *BudgetServiceImpl) ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Budget, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.ListByProjectID(ctx, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, b := range budgets {
		if err := s.resolveAPUs(ctx, b); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

// checkItemAPU validates one item input. Budget items may reference only
// global APUs or APUs scoped to the budget's own project; a cross-project
// reference would make the project-delete cascade unsafe.
func (s *BudgetServiceImpl) checkItemAPU(ctx context.Context, projectID string, in model.BudgetItemInput, field string, v *model.ValidationError) (conflict bool, err error) {
	if in.APUID == "" {
		v.Add(field+".apu_id", "required")
		return false, nil
	}
	apu, err := s.apuRepo.GetByID(ctx, in.APUID)
	if errors.Is(err, repository.ErrNotFound) {
		v.Add(field+".apu_id", "no such apu")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if apu.ProjectID != nil && *apu.ProjectID != projectID {
		return true, nil
	}
	if !in.Quantity.IsPositive() {
		v.Add(field+".quantity", "must be positive")
	}
	return false, nil
}

// Create validates and persists a new budget with its items. Name defaults
// to "Project Budget"; a zero version is auto-incremented per project.
func (s *BudgetServiceImpl) Create(ctx context.Context, budget *model.Budget, items []model.BudgetItemInput) error {
	if budget.Name == "" {
		budget.Name = "Project Budget"
	}

	var v model.ValidationError
	if budget.Version < 0 {
		v.Add("version", "must be positive")
	}
	if budget.ProjectID == "" {
		v.Add("project_id", "required")
	} else if _, err := s.projectRepo.GetByID(ctx, budget.ProjectID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		v.Add("project_id", "no such project")
	}

	for i, in := range items {
		conflict, err := s.checkItemAPU(ctx, budget.ProjectID, in, fmt.Sprintf("items[%d]", i), &v)
		if err != nil {
			return err
		}
		if conflict {
			return repository.ErrConflict
		}
		budget.Items = append(budget.Items, &model.BudgetItem{
			APUID:       in.APUID,
			Quantity:    in.Quantity,
			Description: in.Description,
		})
	}
	if err := v.Err(); err != nil {
		return err
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return err
	}
	return s.resolveAPUs(ctx, budget)
}

// Update applies a partial header update and returns the updated budget.
func (s *BudgetServiceImpl) Update(ctx context.Context, id string, patch model.BudgetPatch) (*model.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		budget.Name = *patch.Name
	}
	if patch.Version != nil {
		budget.Version = *patch.Version
	}

	var v model.ValidationError
	if strings.TrimSpace(budget.Name) == "" {
		v.Add("name", "required")
	}
	if budget.Version < 1 {
		v.Add("version", "must be positive")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Update(ctx, budget); err != nil {
		return nil, err
	}
	if err := s.resolveAPUs(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// Delete removes the budget with its items and returns the deleted record.
func (s *BudgetServiceImpl) Delete(ctx context.Context, id string) (*model.Budget, error) {
	budget, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.budgetRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return budget, nil
}

// AddItem appends one line to an existing budget and returns it with its
// derived line total.
func (s *BudgetServiceImpl) AddItem(ctx context.Context, budgetID string, in model.BudgetItemInput) (*model.BudgetItem, error) {
	budget, err := s.budgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	var v model.ValidationError
	conflict, err := s.checkItemAPU(ctx, budget.ProjectID, in, "item", &v)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, repository.ErrConflict
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	item := &model.BudgetItem{
		BudgetID:    budgetID,
		APUID:       in.APUID,
		Quantity:    in.Quantity,
		Description: in.Description,
	}
	if err := s.budgetRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}

	apu, err := s.apuRepo.GetByID(ctx, item.APUID)
	if err != nil {
		return nil, err
	}
	apu.Recalculate()
	item.APU = apu
	item.LineTotal = item.Quantity.Mul(apu.TotalCost)
	return item, nil
}

// UpdateItem applies a partial update to one line and returns it with its
// derived line total.
func (s *BudgetServiceImpl) UpdateItem(ctx context.Context, budgetID, itemID string, patch model.BudgetItemPatch) (*model.BudgetItem, error) {
	item, err := s.budgetRepo.GetItem(ctx, budgetID, itemID)
	if err != nil {
		return nil, err
	}

	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}

	if !item.Quantity.IsPositive() {
		var v model.ValidationError
		v.Add("quantity", "must be positive")
		return nil, v.Err()
	}

	if err := s.budgetRepo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	apu, err := s.apuRepo.GetByID(ctx, item.APUID)
	if err != nil {
		return nil, err
	}
	apu.Recalculate()
	item.APU = apu
	item.LineTotal = item.Quantity.Mul(apu.TotalCost)
	return item, nil
}

// RemoveItem deletes one line from a budget.
func (s *BudgetServiceImpl) RemoveItem(ctx context.Context, budgetID, itemID string) error {
	return s.budgetRepo.RemoveItem(ctx, budgetID, itemID)
}
