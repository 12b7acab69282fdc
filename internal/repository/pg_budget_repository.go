package repository

import (
	"context"
	"errors"

	"github.com/costwise/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgBudgetRepository is the PostgreSQL implementation of BudgetRepository.
type PgBudgetRepository struct {
	pool *pgxpool.Pool
}

// NewPgBudgetRepository creates a PgBudgetRepository.
func NewPgBudgetRepository(pool *pgxpool.Pool) *PgBudgetRepository {
	return &PgBudgetRepository{pool: pool}
}

// GetByID fetches a budget with all its items. The APUs behind the items
// are not resolved here; the service does that when computing totals.
func (r *PgBudgetRepository) GetByID(ctx context.Context, id string) (*model.Budget, error) {
	var b model.Budget
	err := r.pool.QueryRow(ctx,
		`SELECT id, project_id, name, version, created_at, updated_at
		 FROM budgets WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.ProjectID, &b.Name, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return &b, nil
}

// ListByProjectID returns a project's budgets ordered by version, items included.
func (r *PgBudgetRepository) ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, name, version, created_at, updated_at
		 FROM budgets WHERE project_id = $1 ORDER BY version LIMIT $2 OFFSET $3`,
		projectID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		budgets = append(budgets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range budgets {
		items, err := r.listItems(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Items = items
	}
	return budgets, nil
}

func (r *PgBudgetRepository) listItems(ctx context.Context, budgetID string) ([]*model.BudgetItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, budget_id, apu_id, quantity, description
		 FROM budget_items WHERE budget_id = $1 ORDER BY created_at`,
		budgetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.BudgetItem
	for rows.Next() {
		var item model.BudgetItem
		if err := rows.Scan(&item.ID, &item.BudgetID, &item.APUID, &item.Quantity, &item.Description); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Create inserts the budget and all its items in one transaction. A zero
// Version is assigned max(version)+1 for the project, read under the same
// transaction so concurrent creates cannot hand out the same number twice
// (the unique index on (project_id, version) backstops it either way).
func (r *PgBudgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if budget.Version == 0 {
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM budgets WHERE project_id = $1`,
			budget.ProjectID,
		).Scan(&budget.Version); err != nil {
			return err
		}
	}

	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO budgets (id, project_id, name, version)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		budget.ID, budget.ProjectID, budget.Name, budget.Version,
	).Scan(&budget.CreatedAt, &budget.UpdatedAt)
	if constraintViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	for _, item := range budget.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.BudgetID = budget.ID
		if _, err := tx.Exec(ctx,
			`INSERT INTO budget_items (id, budget_id, apu_id, quantity, description)
			 VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.BudgetID, item.APUID, item.Quantity, item.Description,
		); err != nil {
			if constraintViolation(err) {
				return ErrConflict
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

// Update writes the budget header row. Returns ErrNotFound if absent.
func (r *PgBudgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE budgets SET name = $1, version = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		budget.Name, budget.Version, budget.ID,
	).Scan(&budget.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// Delete removes the budget and its items in one transaction. The APUs the
// items reference are shared and stay untouched.
func (r *PgBudgetRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM budget_items WHERE budget_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// AddItem inserts one budget line.
func (r *PgBudgetRepository) AddItem(ctx context.Context, item *model.BudgetItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO budget_items (id, budget_id, apu_id, quantity, description)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.BudgetID, item.APUID, item.Quantity, item.Description,
	)
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// GetItem fetches one budget line scoped to its owning budget.
func (r *PgBudgetRepository) GetItem(ctx context.Context, budgetID, itemID string) (*model.BudgetItem, error) {
	var item model.BudgetItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, budget_id, apu_id, quantity, description
		 FROM budget_items WHERE id = $1 AND budget_id = $2`,
		itemID, budgetID,
	).Scan(&item.ID, &item.BudgetID, &item.APUID, &item.Quantity, &item.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem writes quantity and description of one budget line.
func (r *PgBudgetRepository) UpdateItem(ctx context.Context, item *model.BudgetItem) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE budget_items SET quantity = $1, description = $2
		 WHERE id = $3 AND budget_id = $4`,
		item.Quantity, item.Description, item.ID, item.BudgetID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveItem deletes one budget line.
func (r *PgBudgetRepository) RemoveItem(ctx context.Context, budgetID, itemID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budget_items WHERE id = $1 AND budget_id = $2`,
		itemID, budgetID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
