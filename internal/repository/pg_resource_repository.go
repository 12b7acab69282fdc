package repository

import (
	"context"
	"errors"

	"github.com/costwise/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgResourceRepository is the PostgreSQL implementation of ResourceRepository.
type PgResourceRepository struct {
	pool *pgxpool.Pool
}

// NewPgResourceRepository creates a PgResourceRepository.
func NewPgResourceRepository(pool *pgxpool.Pool) *PgResourceRepository {
	return &PgResourceRepository{pool: pool}
}

// GetByID fetches a resource by id.
func (r *PgResourceRepository) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, type, unit, unit_cost, currency, supplier, created_at, updated_at
		 FROM resources WHERE id = $1`,
		id,
	).Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.Unit, &res.UnitCost, &res.Currency, &res.Supplier, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns resources ordered by creation time.
func (r *PgResourceRepository) List(ctx context.Context, limit, offset int) ([]*model.Resource, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, type, unit, unit_cost, currency, supplier, created_at, updated_at
		 FROM resources ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []*model.Resource
	for rows.Next() {
		var res model.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.Unit, &res.UnitCost, &res.Currency, &res.Supplier, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, &res)
	}
	return resources, rows.Err()
}

// Create inserts a resource.
func (r *PgResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO resources (id, name, description, type, unit, unit_cost, currency, supplier)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		resource.ID, resource.Name, resource.Description, resource.Type, resource.Unit,
		resource.UnitCost, resource.Currency, resource.Supplier,
	).Scan(&resource.CreatedAt, &resource.UpdatedAt)
}

// Update writes the full resource row. Returns ErrNotFound if absent.
func (r *PgResourceRepository) Update(ctx context.Context, resource *model.Resource) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE resources SET name = $1, description = $2, type = $3, unit = $4,
		        unit_cost = $5, currency = $6, supplier = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING updated_at`,
		resource.Name, resource.Description, resource.Type, resource.Unit,
		resource.UnitCost, resource.Currency, resource.Supplier, resource.ID,
	).Scan(&resource.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a resource. A resource referenced by any APU item is never
// deleted: cascading here would silently corrupt every derived cost built
// on top of it, so the delete is rejected with ErrConflict instead.
func (r *PgResourceRepository) Delete(ctx context.Context, id string) error {
	var referenced bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM apu_items WHERE resource_id = $1)`, id,
	).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return ErrConflict
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		if constraintViolation(err) {
			return ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
