package repository

import (
	"context"
	"errors"

	"github.com/costwise/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgProjectRepository is the PostgreSQL implementation of ProjectRepository.
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository creates a PgProjectRepository.
func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

// GetByID fetches a project by id.
func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, description, status, start_date, end_date, budget, currency, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.Budget, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns project summaries ordered by creation time.
func (r *PgProjectRepository) List(ctx context.Context, limit, offset int) ([]*model.ProjectSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, owner_id, status, start_date, end_date
		 FROM projects ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.ProjectSummary
	for rows.Next() {
		var p model.ProjectSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Status, &p.StartDate, &p.EndDate); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// Create inserts a project. A missing owner surfaces as ErrConflict via the FK.
func (r *PgProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO projects (id, owner_id, name, description, status, start_date, end_date, budget, currency)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		project.ID, project.OwnerID, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.Budget, project.Currency,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// Update writes the full project row. Returns ErrNotFound if absent.
func (r *PgProjectRepository) Update(ctx context.Context, project *model.Project) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE projects SET owner_id = $1, name = $2, description = $3, status = $4,
		        start_date = $5, end_date = $6, budget = $7, currency = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING updated_at`,
		project.OwnerID, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.Budget, project.Currency, project.ID,
	).Scan(&project.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// Delete removes the project and everything it exclusively owns, in one
// transaction. Deletion order matters: budget items first so the restrict
// FK on apu_id never blocks the scoped-APU cleanup.
func (r *PgProjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	steps := []string{
		`DELETE FROM budget_items WHERE budget_id IN (SELECT id FROM budgets WHERE project_id = $1)`,
		`DELETE FROM budgets WHERE project_id = $1`,
		`DELETE FROM tasks WHERE project_id = $1`,
		`DELETE FROM apu_items WHERE apu_id IN (SELECT id FROM apus WHERE project_id = $1)`,
		`DELETE FROM apus WHERE project_id = $1`,
		`DELETE FROM projects WHERE id = $1`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			if constraintViolation(err) {
				return ErrConflict
			}
			return err
		}
	}
	return tx.Commit(ctx)
}
