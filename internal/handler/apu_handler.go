package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/service"
)

// APUHandler serves unit-price-analysis CRUD and item operations.
type APUHandler struct {
	svc service.APUService
}

// NewAPUHandler creates an APUHandler.
func NewAPUHandler(svc service.APUService) *APUHandler {
	return &APUHandler{svc: svc}
}

// List handles GET /api/apus.
func (h *APUHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	apus, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "apu list failed")
		return
	}
	if apus == nil {
		apus = []*model.APU{}
	}
	writeJSON(w, http.StatusOK, apus)
}

// Get handles GET /api/apus/{id}. The response carries the derived
// total_cost, freshly computed from the items.
func (h *APUHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}
	apu, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "apu get failed", "apu_id", id)
		return
	}
	writeJSON(w, http.StatusOK, apu)
}

// Create handles POST /api/apus.
func (h *APUHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code        string               `json:"code"`
		Description string               `json:"description"`
		Unit        string               `json:"unit"`
		ProjectID   *string              `json:"project_id"`
		Items       []model.APUItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	apu := &model.APU{
		Code:        req.Code,
		Description: req.Description,
		Unit:        req.Unit,
		ProjectID:   req.ProjectID,
	}
	if err := h.svc.Create(r.Context(), apu, req.Items); err != nil {
		writeServiceError(w, err, "apu create failed")
		return
	}
	writeJSON(w, http.StatusCreated, apu)
}

// Update handles PUT /api/apus/{id} (header fields only; items have their
// own endpoints).
func (h *APUHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.APUPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	apu, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, "apu update failed", "apu_id", id)
		return
	}
	writeJSON(w, http.StatusOK, apu)
}

// Delete handles DELETE /api/apus/{id}. An APU still referenced by budget
// items comes back as 409.
func (h *APUHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	apu, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "apu delete failed", "apu_id", id)
		return
	}
	writeJSON(w, http.StatusOK, apu)
}

// AddItem handles POST /api/apus/{id}/items.
func (h *APUHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in model.APUItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := h.svc.AddItem(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "apu item add failed", "apu_id", id)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/apus/{id}/items/{itemID}.
func (h *APUHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	itemID := r.PathValue("itemID")

	var patch model.APUItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), id, itemID, patch)
	if err != nil {
		writeServiceError(w, err, "apu item update failed", "apu_id", id, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /api/apus/{id}/items/{itemID}.
func (h *APUHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	itemID := r.PathValue("itemID")

	if err := h.svc.RemoveItem(r.Context(), id, itemID); err != nil {
		writeServiceError(w, err, "apu item remove failed", "apu_id", id, "item_id", itemID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
