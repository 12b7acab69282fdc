package repository

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// BudgetRepository persists budgets and their items.
type BudgetRepository interface {
	GetByID(ctx context.Context, id string) (*model.Budget, error)
	ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Budget, error)
	// Create inserts the budget and all its items in one transaction.
	// A zero Version is assigned max(version)+1 for the project.
	Create(ctx context.Context, budget *model.Budget) error
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, id string) error

	AddItem(ctx context.Context, item *model.BudgetItem) error
	GetItem(ctx context.Context, budgetID, itemID string) (*model.BudgetItem, error)
	UpdateItem(ctx context.Context, item *model.BudgetItem) error
	RemoveItem(ctx context.Context, budgetID, itemID string) error
}
