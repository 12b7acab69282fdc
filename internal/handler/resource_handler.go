package handler

import (
	"encoding/json"
	"net/http"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/service"
	"github.com/shopspring/decimal"
)

// ResourceHandler serves resource-catalog CRUD.
type ResourceHandler struct {
	svc service.ResourceService
}

// NewResourceHandler creates a ResourceHandler.
func NewResourceHandler(svc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

// List handles GET /api/resources.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	resources, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "resource list failed")
		return
	}
	if resources == nil {
		resources = []*model.Resource{}
	}
	writeJSON(w, http.StatusOK, resources)
}

// Get handles GET /api/resources/{id}.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}
	resource, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "resource get failed", "resource_id", id)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// Create handles POST /api/resources.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Type        string          `json:"type"`
		Unit        string          `json:"unit"`
		UnitCost    decimal.Decimal `json:"unit_cost"`
		Currency    string          `json:"currency"`
		Supplier    string          `json:"supplier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	resource := &model.Resource{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Unit:        req.Unit,
		UnitCost:    req.UnitCost,
		Currency:    req.Currency,
		Supplier:    req.Supplier,
	}
	if err := h.svc.Create(r.Context(), resource); err != nil {
		writeServiceError(w, err, "resource create failed")
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

// Update handles PUT /api/resources/{id}.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.ResourcePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	resource, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, err, "resource update failed", "resource_id", id)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// Delete handles DELETE /api/resources/{id}. A resource still referenced
// by APU items comes back as 409.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	resource, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "resource delete failed", "resource_id", id)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}
