package service

import (
	"context"
	"errors"
	"strings"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// TaskService is the business-logic interface for the task hierarchy.
type TaskService interface {
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Task, error)
	ListChildren(ctx context.Context, id string) ([]*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)
	// Delete removes the task and all its transitive subtasks, returning
	// the deleted record.
	Delete(ctx context.Context, id string) (*model.Task, error)
}

// TaskServiceImpl is the TaskService implementation.
type TaskServiceImpl struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewTaskService creates a TaskServiceImpl.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) TaskService {
	return &TaskServiceImpl{taskRepo: taskRepo, projectRepo: projectRepo, userRepo: userRepo}
}

// GetByID fetches a task by id.
func (s *TaskServiceImpl) GetByID(ctx context.Context, id string) (*model.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

// ListByProjectID returns a project's tasks in insertion order. The
// project must exist.
func (s *TaskServiceImpl) ListByProjectID(ctx context.Context, projectID string, limit, offset int) ([]*model.Task, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByProjectID(ctx, projectID, limit, offset)
}

// ListChildren returns the direct subtasks of a task. The task must exist.
func (s *TaskServiceImpl) ListChildren(ctx context.Context, id string) ([]*model.Task, error) {
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.taskRepo.ListChildren(ctx, id)
}

func validateTaskFields(t *model.Task) *model.ValidationError {
	var v model.ValidationError
	if strings.TrimSpace(t.Name) == "" {
		v.Add("name", "required")
	}
	if !model.ValidTaskStatus(t.Status) {
		v.Add("status", "unknown status")
	}
	if !model.ValidTaskPriority(t.Priority) {
		v.Add("priority", "unknown priority")
	}
	if t.StartDate != nil && t.DueDate != nil && t.DueDate.Before(*t.StartDate) {
		v.Add("due_date", "must not be before start_date")
	}
	return &v
}

// checkParent validates a proposed parent: it must exist, live in the same
// project, and must not be the task itself or one of its descendants. The
// descendant test is an ancestor walk from the proposed parent toward the
// root; hitting taskID on the way up means the edge would close a loop.
// taskID is empty on create (no loop is possible with a brand-new node).
func (s *TaskServiceImpl) checkParent(ctx context.Context, taskID, projectID, parentID string, v *model.ValidationError) error {
	if taskID != "" && parentID == taskID {
		return ErrCycle
	}

	parent, err := s.taskRepo.GetByID(ctx, parentID)
	if errors.Is(err, repository.ErrNotFound) {
		v.Add("parent_task_id", "no such task")
		return nil
	}
	if err != nil {
		return err
	}
	if parent.ProjectID != projectID {
		v.Add("parent_task_id", "must belong to the same project")
		return nil
	}

	if taskID == "" {
		return nil
	}
	for cur := parent; cur.ParentTaskID != nil; {
		if *cur.ParentTaskID == taskID {
			return ErrCycle
		}
		cur, err = s.taskRepo.GetByID(ctx, *cur.ParentTaskID)
		if err != nil {
			return err
		}
	}
	return nil
}

// Create validates and persists a new task. Status defaults to "todo",
// priority to "medium".
func (s *TaskServiceImpl) Create(ctx context.Context, task *model.Task) error {
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}

	v := validateTaskFields(task)
	if task.ProjectID == "" {
		v.Add("project_id", "required")
	} else if _, err := s.projectRepo.GetByID(ctx, task.ProjectID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		v.Add("project_id", "no such project")
	}
	if task.AssigneeID != nil {
		if _, err := s.userRepo.GetByID(ctx, *task.AssigneeID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			v.Add("assignee_id", "no such user")
		}
	}
	if task.ParentTaskID != nil && task.ProjectID != "" {
		if err := s.checkParent(ctx, "", task.ProjectID, *task.ParentTaskID, v); err != nil {
			return err
		}
	}
	if err := v.Err(); err != nil {
		return err
	}

	return s.taskRepo.Create(ctx, task)
}

// Update applies a partial update and returns the updated task. A parent
// change is re-validated against the same-project and no-cycle invariants;
// on any failure the hierarchy is left unchanged.
func (s *TaskServiceImpl) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		task.Name = *patch.Name
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.StartDate != nil {
		task.StartDate = patch.StartDate
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.ClearAssignee {
		task.AssigneeID = nil
	} else if patch.AssigneeID != nil {
		task.AssigneeID = patch.AssigneeID
	}
	if patch.ClearParent {
		task.ParentTaskID = nil
	} else if patch.ParentTaskID != nil {
		task.ParentTaskID = patch.ParentTaskID
	}

	v := validateTaskFields(task)
	if task.AssigneeID != nil {
		if _, err := s.userRepo.GetByID(ctx, *task.AssigneeID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			v.Add("assignee_id", "no such user")
		}
	}
	if task.ParentTaskID != nil {
		if err := s.checkParent(ctx, task.ID, task.ProjectID, *task.ParentTaskID, v); err != nil {
			return nil, err
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task and its whole subtree, returning the deleted record.
func (s *TaskServiceImpl) Delete(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return task, nil
}
