package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a versioned costed plan for a project. Its total is derived
// from its items on every read; nothing aggregated is ever stored.
type Budget struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*BudgetItem `json:"items"`

	// Transient: Σ item.quantity × APU total cost, recomputed on read.
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// BudgetItem references an APU with a quantity. The APU is shared, not
// owned: deleting the budget leaves it untouched.
type BudgetItem struct {
	ID          string          `json:"id"`
	BudgetID    string          `json:"budget_id"`
	APUID       string          `json:"apu_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description,omitempty"`

	// Transient: resolved APU and derived quantity × APU.TotalCost.
	APU       *APU            `json:"apu,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Recalculate refreshes the transient totals from the resolved APUs.
// Items whose APU has not been resolved contribute zero.
func (b *Budget) Recalculate() {
	total := decimal.Zero
	for _, item := range b.Items {
		if item.APU != nil {
			item.APU.Recalculate()
			item.LineTotal = item.Quantity.Mul(item.APU.TotalCost)
		}
		total = total.Add(item.LineTotal)
	}
	b.TotalAmount = total
}

// BudgetItemInput is the request payload for one budget line.
type BudgetItemInput struct {
	APUID       string          `json:"apu_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description"`
}

// BudgetPatch carries a partial header update; nil fields are left unchanged.
type BudgetPatch struct {
	Name    *string `json:"name"`
	Version *int    `json:"version"`
}

// BudgetItemPatch carries a partial line update; nil fields are left unchanged.
type BudgetItemPatch struct {
	Quantity    *decimal.Decimal `json:"quantity"`
	Description *string          `json:"description"`
}
