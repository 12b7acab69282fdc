package model

import "time"

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusBlocked    = "blocked"
)

// Task priorities.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task is a schedulable work item under a project. ParentTaskID forms a
// tree within the same project; cycle prevention happens at write time,
// the storage layer has no protection of its own.
type Task struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssigneeID   *string    `json:"assignee_id,omitempty"`
	ParentTaskID *string    `json:"parent_task_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskPatch carries a partial update; nil fields are left unchanged.
// AssigneeID and ParentTaskID are nullable in the schema, so clearing them
// is a separate flag the handler sets when the request key is an explicit
// null (encoding/json cannot tell null from absent on a plain pointer).
type TaskPatch struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	Priority      *string    `json:"priority"`
	StartDate     *time.Time `json:"start_date"`
	DueDate       *time.Time `json:"due_date"`
	AssigneeID    *string    `json:"assignee_id"`
	ClearAssignee bool       `json:"-"`
	ParentTaskID  *string    `json:"parent_task_id"`
	ClearParent   bool       `json:"-"`
}

// ValidTaskStatus reports whether status is one of the known task statuses.
func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// ValidTaskPriority reports whether p is one of the known task priorities.
func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
