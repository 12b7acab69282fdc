package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/service"
)

// BudgetHandler serves budget CRUD and item operations.
type BudgetHandler struct {
	svc service.BudgetService
}

// NewBudgetHandler creates a BudgetHandler.
func NewBudgetHandler(svc service.BudgetService) *BudgetHandler {
	return &BudgetHandler{svc: svc}
}

// ListByProject handles GET /api/projects/{id}/budgets.
func (h *BudgetHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	limit, offset := pagination(r)

	budgets, err := h.svc.ListByProjectID(r.Context(), projectID, limit, offset)
	if err != nil {
		writeServiceError(w, err, "budget list failed", "project_id", projectID)
		return
	}
	if budgets == nil {
		budgets = []*model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

// Get handles GET /api/budgets/{id}. The response carries total_amount and
// per-item line totals, freshly derived from the referenced APUs.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}
	budget, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "budget get failed", "budget_id", id)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Create handles POST /api/projects/{id}/budgets.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")

	var req struct {
		Name    string                  `json:"name"`
		Version int                     `json:"version"`
		Items   []model.BudgetItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	budget := &model.Budget{
		ProjectID: projectID,
		Name:      req.Name,
		Version:   req.Version,
	}
	if err := h.svc.Create(r.Context(), budget, req.Items); err != nil {
		writeServiceError(w, err, "budget create failed", "project_id", projectID)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

// Update handles PUT /api/budgets/{id} (header fields only).
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.BudgetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	budget, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, "budget update failed", "budget_id", id)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// Delete handles DELETE /api/budgets/{id}.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	budget, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "budget delete failed", "budget_id", id)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// AddItem handles POST /api/budgets/{id}/items.
func (h *BudgetHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in model.BudgetItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := h.svc.AddItem(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "budget item add failed", "budget_id", id)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/budgets/{id}/items/{itemID}.
func (h *BudgetHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	itemID := r.PathValue("itemID")

	var patch model.BudgetItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), id, itemID, patch)
	if err != nil {
		writeServiceError(w, err, "budget item update failed", "budget_id", id, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /api/budgets/{id}/items/{itemID}.
func (h *BudgetHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	itemID := r.PathValue("itemID")

	if err := h.svc.RemoveItem(r.Context(), id, itemID); err != nil {
		writeServiceError(w, err, "budget item remove failed", "budget_id", id, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
