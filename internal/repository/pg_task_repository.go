package repository

import (
	"context"
	"errors"

	"github.com/costwise/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgTaskRepository is the PostgreSQL implementation of TaskRepository.
type PgTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPgTaskRepository creates a PgTaskRepository.
func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

const taskColumns = `id, project_id, name, description, status, priority, start_date, due_date, assignee_id, parent_task_id, created_at, updated_at`

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.Status, &t.Priority,
		&t.StartDate, &t.DueDate, &t.AssigneeID, &t.ParentTaskID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID fetches a task by id.
func (r *PgTaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByProjectID returns a project's tasks in insertion order.
func (r *PgTaskRepository) ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		projectID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListChildren returns the direct subtasks of a task in insertion order.
func (r *PgTaskRepository) ListChildren(ctx context.Context, parentID string) ([]*model.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = $1 ORDER BY created_at`,
		parentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows pgx.Rows) ([]*model.Task, error) {
	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts a task.
func (r *PgTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (id, project_id, name, description, status, priority, start_date, due_date, assignee_id, parent_task_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		task.ID, task.ProjectID, task.Name, task.Description, task.Status, task.Priority,
		task.StartDate, task.DueDate, task.AssigneeID, task.ParentTaskID,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// Update writes the full task row. Returns ErrNotFound if absent.
func (r *PgTaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE tasks SET name = $1, description = $2, status = $3, priority = $4,
		        start_date = $5, due_date = $6, assignee_id = $7, parent_task_id = $8, updated_at = NOW()
		 WHERE id = $9
		 RETURNING updated_at`,
		task.Name, task.Description, task.Status, task.Priority,
		task.StartDate, task.DueDate, task.AssigneeID, task.ParentTaskID, task.ID,
	).Scan(&task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if constraintViolation(err) {
		return ErrConflict
	}
	return err
}

// Delete removes the task and all its transitive subtasks using a
// recursive CTE, so the cascade happens in a single statement.
func (r *PgTaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`WITH RECURSIVE subtree AS (
		     SELECT id FROM tasks WHERE id = $1
		     UNION ALL
		     SELECT t.id FROM tasks t JOIN subtree s ON t.parent_task_id = s.id
		 )
		 DELETE FROM tasks WHERE id IN (SELECT id FROM subtree)`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
