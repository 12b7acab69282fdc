package repository

import (
	"context"

	"github.com/costwise/backend/internal/model"
)

// APURepository persists unit-price analyses and their items.
type APURepository interface {
	GetByID(ctx context.Context, id string) (*model.APU, error)
	GetByCode(ctx context.Context, code string) (*model.APU, error)
	List(ctx context.Context, limit, offset int) ([]*model.APU, error)
	// Create inserts the APU header and all its items in one transaction.
	Create(ctx context.Context, apu *model.APU) error
	Update(ctx context.Context, apu *model.APU) error
	// Delete removes the APU and its items; returns ErrConflict while any
	// budget item references the APU.
	Delete(ctx context.Context, id string) error
	// ReferencedOutsideProject reports whether a budget item in any project
	// other than projectID references the APU.
	ReferencedOutsideProject(ctx context.Context, apuID, projectID string) (bool, error)

	AddItem(ctx context.Context, item *model.APUItem) error
	GetItem(ctx context.Context, apuID, itemID string) (*model.APUItem, error)
	UpdateItem(ctx context.Context, item *model.APUItem) error
	RemoveItem(ctx context.Context, apuID, itemID string) error
}
