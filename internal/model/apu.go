package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// APU (unit-price analysis) is a reusable costed recipe: a set of priced
// resource lines whose total is the cost of producing one unit of work.
// A nil ProjectID makes the APU global; otherwise it belongs to one project.
type APU struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Unit        string    `json:"unit"`
	ProjectID   *string   `json:"project_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []*APUItem `json:"items"`

	// Transient: recomputed from Items on every read, never stored.
	TotalCost decimal.Decimal `json:"total_cost"`
}

// APUItem is one resource line of an APU. CostPerUnit is a snapshot of the
// resource's unit cost at the time the line was added; later resource price
// changes do not flow into existing lines.
type APUItem struct {
	ID          string          `json:"id"`
	APUID       string          `json:"apu_id"`
	ResourceID  string          `json:"resource_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

// LineTotal returns quantity × cost-per-unit for this line.
func (i *APUItem) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.CostPerUnit)
}

// ComputeTotalCost sums the line totals of all items.
func ComputeTotalCost(items []*APUItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Recalculate refreshes the transient TotalCost from the current items.
func (a *APU) Recalculate() {
	a.TotalCost = ComputeTotalCost(a.Items)
}

// APUItemInput is the request payload for one APU line. A nil CostPerUnit
// asks for a snapshot of the referenced resource's current unit cost.
type APUItemInput struct {
	ResourceID  string           `json:"resource_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit"`
}

// APUPatch carries a partial header update; nil fields are left unchanged.
type APUPatch struct {
	Code        *string `json:"code"`
	Description *string `json:"description"`
	Unit        *string `json:"unit"`
	ProjectID   *string `json:"project_id"`
}

// APUItemPatch carries a partial line update; nil fields are left unchanged.
type APUItemPatch struct {
	Quantity    *decimal.Decimal `json:"quantity"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit"`
}
