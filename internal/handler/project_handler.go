package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/service"
	"github.com/shopspring/decimal"
)

// ProjectHandler serves project CRUD.
type ProjectHandler struct {
	svc service.ProjectService
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	projects, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "project list failed")
		return
	}
	if projects == nil {
		projects = []*model.ProjectSummary{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}
	project, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "project get failed", "project_id", id)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Status      string           `json:"status"`
		StartDate   string           `json:"start_date"`
		EndDate     string           `json:"end_date"`
		Budget      *decimal.Decimal `json:"budget"`
		Currency    string           `json:"currency"`
		OwnerID     string           `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var v model.ValidationError
	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   dateField(req.StartDate, "start_date", &v),
		EndDate:     dateField(req.EndDate, "end_date", &v),
		Budget:      req.Budget,
		Currency:    req.Currency,
		OwnerID:     req.OwnerID,
	}
	if err := v.Err(); err != nil {
		writeServiceError(w, err, "project create failed")
		return
	}
	if err := h.svc.Create(r.Context(), project); err != nil {
		writeServiceError(w, err, "project create failed")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Status      *string          `json:"status"`
		StartDate   *string          `json:"start_date"`
		EndDate     *string          `json:"end_date"`
		Budget      *decimal.Decimal `json:"budget"`
		Currency    *string          `json:"currency"`
		OwnerID     *string          `json:"owner_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	patch := model.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Budget:      req.Budget,
		Currency:    req.Currency,
		OwnerID:     req.OwnerID,
	}
	var v model.ValidationError
	if req.StartDate != nil {
		patch.StartDate = dateField(*req.StartDate, "start_date", &v)
	}
	if req.EndDate != nil {
		patch.EndDate = dateField(*req.EndDate, "end_date", &v)
	}
	if err := v.Err(); err != nil {
		writeServiceError(w, err, "project update failed", "project_id", id)
		return
	}

	project, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, "project update failed", "project_id", id)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}. The response is the deleted
// project; its tasks, budgets and scoped APUs are gone with it.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	project, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "project delete failed", "project_id", id)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
