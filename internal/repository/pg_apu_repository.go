package repository

import (
	"context"
	"errors"

	"github.com/costwise/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgAPURepository is the PostgreSQL implementation of APURepository.
type PgAPURepository struct {
	pool *pgxpool.Pool
}

// NewPgAPURepository creates a PgAPURepository.
func NewPgAPURepository(pool *pgxpool.Pool) *PgAPURepository {
	return &PgAPURepository{pool: pool}
}

// GetByID fetches an APU with all its items.
func (r *PgAPURepository) GetByID(ctx context.Context, id string) (*model.APU, error) {
	var a model.APU
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, description, unit, project_id, created_at, updated_at
		 FROM apus WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Code, &a.Description, &a.Unit, &a.ProjectID, &a.CreatedAt, &a.UpdatedAt)
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
	a.Items = items
	return &a, nil
}

// GetByCode fetches an APU with all its items by its unique code.
func (r *PgAPURepository) GetByCode(ctx context.Context, code string) (*model.APU, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM apus WHERE code = $1`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// List returns APUs ordered by creation time, items included.
func (r *PgAPURepository) List(ctx context.Context, limit, offset int) ([]*model.APU, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, description, unit, project_id, created_at, updated_at
		 FROM apus ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apus []*model.APU
	for rows.Next() {
		var a model.APU
		if err := rows.Scan(&a.ID, &a.Code, &a.Description, &a.Unit, &a.ProjectID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		apus = append(apus, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range apus {
		items, err := r.listItems(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		a.Items = items
	}
	return apus, nil
}

func (r *PgAPURepository) listItems(ctx context.Context, apuID string) ([]*model.APUItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, apu_id, resource_id, quantity, cost_per_unit
		 FROM apu_items WHERE apu_id = $1 ORDER BY created_at`,
		apuID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*model.APUItem
	for rows.Next() {
		var item model.APUItem
		if err := rows.Scan(&item.ID, &item.APUID, &item.ResourceID, &item.Quantity, &item.CostPerUnit); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Create inserts the APU header and all its items in one transaction.
// A duplicate code returns ErrConflict.
func (r *PgAPURepository) Create(ctx context.Context, apu *model.APU) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if apu.ID == "" {
		apu.ID = uuid.NewString()
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO apus (id, code, description, unit, project_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		apu.ID, apu.Code, apu.Description, apu.Unit, apu.ProjectID,
	).Scan(&apu.CreatedAt, &apu.UpdatedAt)
	if constraintViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	for _, item := range apu.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.APUID = apu.ID
		if _, err := tx.Exec(ctx,
			`INSERT INTO apu_items (id, apu_id, resource_id, quantity, cost_per_unit)
			 VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.APUID, item.ResourceID, item.Quantity, item.CostPerUnit,
		); err != nil {
			if constraintViolation(err) {
				return ErrConflict
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

// Update writes the APU header row. Returns ErrNotFound if absent.
func (r *PgAPURepository) Update(ctx context.Context, apu *model.APU) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE apus SET code = $1, description = $2, unit = $3, project_id = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING updated_at`,
		apu.Code, apu.Description, apu.Unit, apu.ProjectID, apu.ID,
	).Scan(&apu.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// Delete removes the APU and its items. An APU referenced by any budget
// item is rejected with ErrConflict: deleting it would leave dangling
// budget lines with invalid totals.
func (r *PgAPURepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var referenced bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM budget_items WHERE apu_id = $1)`, id,
	).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return ErrConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM apu_items WHERE apu_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM apus WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// ReferencedOutsideProject reports whether a budget item in any project
// other than projectID references the APU.
func (r *PgAPURepository) ReferencedOutsideProject(ctx context.Context, apuID, projectID string) (bool, error) {
	var referenced bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		     SELECT 1 FROM budget_items bi
		     JOIN budgets b ON b.id = bi.budget_id
		     WHERE bi.apu_id = $1 AND b.project_id <> $2)`,
		apuID, projectID,
	).Scan(&referenced)
	return referenced, err
}

// AddItem inserts one APU line.
func (r *PgAPURepository) AddItem(ctx context.Context, item *model.APUItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO apu_items (id, apu_id, resource_id, quantity, cost_per_unit)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.APUID, item.ResourceID, item.Quantity, item.CostPerUnit,
	)
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// GetItem fetches one APU line. The apuID guard keeps items reachable only
// through their owning APU.
func (r *PgAPURepository) GetItem(ctx context.Context, apuID, itemID string) (*model.APUItem, error) {
	var item model.APUItem
	err := r.pool.QueryRow(ctx,
		`SELECT id, apu_id, resource_id, quantity, cost_per_unit
		 FROM apu_items WHERE id = $1 AND apu_id = $2`,
		itemID, apuID,
	).Scan(&item.ID, &item.APUID, &item.ResourceID, &item.Quantity, &item.CostPerUnit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem writes quantity and cost of one APU line.
func (r *PgAPURepository) UpdateItem(ctx context.Context, item *model.APUItem) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE apu_items SET quantity = $1, cost_per_unit = $2
		 WHERE id = $3 AND apu_id = $4`,
		item.Quantity, item.CostPerUnit, item.ID, item.APUID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveItem deletes one APU line.
func (r *PgAPURepository) RemoveItem(ctx context.Context, apuID, itemID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM apu_items WHERE id = $1 AND apu_id = $2`,
		itemID, apuID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
