package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/service"
)

// TaskHandler serves task CRUD and hierarchy operations.
type TaskHandler struct {
	svc service.TaskService
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListByProject handles GET /api/projects/{id}/tasks.
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	limit, offset := pagination(r)

	tasks, err := h.svc.ListByProjectID(r.Context(), projectID, limit, offset)
	if err != nil {
		writeServiceError(w, err, "task list failed", "project_id", projectID)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}
	task, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "task get failed", "task_id", id)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Subtasks handles GET /api/tasks/{id}/subtasks.
func (h *TaskHandler) Subtasks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tasks, err := h.svc.ListChildren(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "subtask list failed", "task_id", id)
		return
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/projects/{id}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")

	var req struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		Status       string  `json:"status"`
		Priority     string  `json:"priority"`
		StartDate    string  `json:"start_date"`
		DueDate      string  `json:"due_date"`
		AssigneeID   *string `json:"assignee_id"`
		ParentTaskID *string `json:"parent_task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var v model.ValidationError
	task := &model.Task{
		ProjectID:    projectID,
		Name:         req.Name,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		StartDate:    dateField(req.StartDate, "start_date", &v),
		DueDate:      dateField(req.DueDate, "due_date", &v),
		AssigneeID:   req.AssigneeID,
		ParentTaskID: req.ParentTaskID,
	}
	if err := v.Err(); err != nil {
		writeServiceError(w, err, "task create failed", "project_id", projectID)
		return
	}
	if err := h.svc.Create(r.Context(), task); err != nil {
		writeServiceError(w, err, "task create failed", "project_id", projectID)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update handles PUT /api/tasks/{id}. assignee_id and parent_task_id are
// nullable: an explicit null clears them, absence leaves them alone.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var req struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		Status       *string `json:"status"`
		Priority     *string `json:"priority"`
		StartDate    *string `json:"start_date"`
		DueDate      *string `json:"due_date"`
		AssigneeID   *string `json:"assignee_id"`
		ParentTaskID *string `json:"parent_task_id"`
	}
	if err := unmarshalRaw(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	patch := model.TaskPatch{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: isJSONNull(raw, "assignee_id"),
		ParentTaskID:  req.ParentTaskID,
		ClearParent:   isJSONNull(raw, "parent_task_id"),
	}
	var v model.ValidationError
	if req.StartDate != nil {
		patch.StartDate = dateField(*req.StartDate, "start_date", &v)
	}
	if req.DueDate != nil {
		patch.DueDate = dateField(*req.DueDate, "due_date", &v)
	}
	if err := v.Err(); err != nil {
		writeServiceError(w, err, "task update failed", "task_id", id)
		return
	}

	task, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, "task update failed", "task_id", id)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// unmarshalRaw re-decodes a raw key map into a typed request struct.
func unmarshalRaw(raw map[string]json.RawMessage, dst any) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

// Delete handles DELETE /api/tasks/{id}; the whole subtree goes with it.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "task delete failed", "task_id", id)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
