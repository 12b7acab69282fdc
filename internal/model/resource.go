package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resource types.
const (
	ResourceTypeLabor       = "labor"
	ResourceTypeMaterial    = "material"
	ResourceTypeEquipment   = "equipment"
	ResourceTypeSubcontract = "subcontract"
)

// Resource is a priced catalog entry (labor, material, equipment,
// subcontract) referenced by APU items.
type Resource struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Unit        string          `json:"unit"` // e.g. "hour", "sqm", "bag", "day"
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Currency    string          `json:"currency"`
	Supplier    string          `json:"supplier,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ResourcePatch carries a partial update; nil fields are left unchanged.
type ResourcePatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Type        *string          `json:"type"`
	Unit        *string          `json:"unit"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
	Currency    *string          `json:"currency"`
	Supplier    *string          `json:"supplier"`
}

// ValidResourceType reports whether t is one of the known resource types.
func ValidResourceType(t string) bool {
	switch t {
	case ResourceTypeLabor, ResourceTypeMaterial, ResourceTypeEquipment, ResourceTypeSubcontract:
		return true
	}
	return false
}
