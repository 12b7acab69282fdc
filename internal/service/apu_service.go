package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// APUService is the business-logic interface for unit-price analyses.
type APUService interface {
	GetByID(ctx context.Context, id string) (*model.APU, error)
	List(ctx context.Context, limit, offset int) ([]*model.APU, error)
	Create(ctx context.Context, apu *model.APU, items []model.APUItemInput) error
	Update(ctx context.Context, id string, patch model.APUPatch) (*model.APU, error)
	// Delete removes the APU with its items and returns the deleted record;
	// rejected with ErrConflict while any budget item references it.
	Delete(ctx context.Context, id string) (*model.APU, error)

	AddItem(ctx context.Context, apuID string, in model.APUItemInput) (*model.APUItem, error)
	UpdateItem(ctx context.Context, apuID, itemID string, patch model.APUItemPatch) (*model.APUItem, error)
	RemoveItem(ctx context.Context, apuID, itemID string) error
}

// APUServiceImpl is the APUService implementation.
type APUServiceImpl struct {
	apuRepo      repository.APURepository
	resourceRepo repository.ResourceRepository
	projectRepo  repository.ProjectRepository
}

// NewAPUService creates an APUServiceImpl.
func NewAPUService(apuRepo repository.APURepository, resourceRepo repository.ResourceRepository, projectRepo repository.ProjectRepository) APUService {
	return &APUServiceImpl{apuRepo: apuRepo, resourceRepo: resourceRepo, projectRepo: projectRepo}
}

// GetByID fetches an APU with its items and fresh derived total.
func (s *APUServiceImpl) GetByID(ctx context.Context, id string) (*model.APU, error) {
	apu, err := s.apuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apu.Recalculate()
	return apu, nil
}

// List returns APUs with items and fresh derived totals.
func (s *APUServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.APU, error) {
	apus, err := s.apuRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, a := range apus {
		a.Recalculate()
	}
	return apus, nil
}

// resolveItem validates one item input and snapshots the resource's
// current unit cost when no explicit cost was given. The snapshot is a
// copy: later resource price changes never touch existing lines.
func (s *APUServiceImpl) resolveItem(ctx context.Context, in model.APUItemInput, field string, v *model.ValidationError) (*model.APUItem, error) {
	before := len(v.Fields)

	var resource *model.Resource
	if in.ResourceID == "" {
		v.Add(field+".resource_id", "required")
	} else {
		var err error
		resource, err = s.resourceRepo.GetByID(ctx, in.ResourceID)
		if errors.Is(err, repository.ErrNotFound) {
			v.Add(field+".resource_id", "no such resource")
			resource = nil
		} else if err != nil {
			return nil, err
		}
	}
	if !in.Quantity.IsPositive() {
		v.Add(field+".quantity", "must be positive")
	}
	if in.CostPerUnit != nil && in.CostPerUnit.IsNegative() {
		v.Add(field+".cost_per_unit", "must not be negative")
	}
	if len(v.Fields) > before {
		return nil, nil
	}

	item := &model.APUItem{ResourceID: in.ResourceID, Quantity: in.Quantity}
	if in.CostPerUnit != nil {
		item.CostPerUnit = *in.CostPerUnit
	} else {
		item.CostPerUnit = resource.UnitCost
	}
	return item, nil
}

func (s *APUServiceImpl) validateHeader(ctx context.Context, apu *model.APU, v *model.ValidationError) error {
	if strings.TrimSpace(apu.Code) == "" {
		v.Add("code", "required")
	}
	if strings.TrimSpace(apu.Description) == "" {
		v.Add("description", "required")
	}
	if strings.TrimSpace(apu.Unit) == "" {
		v.Add("unit", "required")
	}
	if apu.ProjectID != nil {
		if _, err := s.projectRepo.GetByID(ctx, *apu.ProjectID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			v.Add("project_id", "no such project")
		}
	}
	return nil
}

// checkCode detects a code collision with a different APU. The unique
// index catches races; this check just surfaces the conflict before any
// items are written.
func (s *APUServiceImpl) checkCode(ctx context.Context, id, code string) error {
	existing, err := s.apuRepo.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != id {
		return repository.ErrConflict
	}
	return nil
}

// Create validates and persists a new APU with its items.
func (s *APUServiceImpl) Create(ctx context.Context, apu *model.APU, items []model.APUItemInput) error {
	var v model.ValidationError
	if err := s.validateHeader(ctx, apu, &v); err != nil {
		return err
	}
	for i, in := range items {
		item, err := s.resolveItem(ctx, in, fmt.Sprintf("items[%d]", i), &v)
		if err != nil {
			return err
		}
		if item != nil {
			apu.Items = append(apu.Items, item)
		}
	}
	if err := v.Err(); err != nil {
		return err
	}
	if err := s.checkCode(ctx, "", apu.Code); err != nil {
		return err
	}

	if err := s.apuRepo.Create(ctx, apu); err != nil {
		return err
	}
	apu.Recalculate()
	return nil
}

// Update applies a partial header update and returns the updated APU.
func (s *APUServiceImpl) Update(ctx context.Context, id string, patch model.APUPatch) (*model.APU, error) {
	apu, err := s.apuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Code != nil {
		apu.Code = *patch.Code
	}
	if patch.Description != nil {
		apu.Description = *patch.Description
	}
	if patch.Unit != nil {
		apu.Unit = *patch.Unit
	}
	if patch.ProjectID != nil {
		if *patch.ProjectID == "" {
			apu.ProjectID = nil // detach: the APU becomes global
		} else {
			apu.ProjectID = patch.ProjectID
		}
	}

	var v model.ValidationError
	if err := s.validateHeader(ctx, apu, &v); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.Code != nil {
		if err := s.checkCode(ctx, apu.ID, apu.Code); err != nil {
			return nil, err
		}
	}
	// Scoping the APU to a project must not strand budget items that
	// reference it from other projects.
	if patch.ProjectID != nil && apu.ProjectID != nil {
		referenced, err := s.apuRepo.ReferencedOutsideProject(ctx, apu.ID, *apu.ProjectID)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, repository.ErrConflict
		}
	}

	if err := s.apuRepo.Update(ctx, apu); err != nil {
		return nil, err
	}
	apu.Recalculate()
	return apu, nil
}

// Delete removes the APU with its items and returns the deleted record.
func (s *APUServiceImpl) Delete(ctx context.Context, id string) (*model.APU, error) {
	apu, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apuRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return apu, nil
}

// AddItem appends one line to an existing APU and returns it. The derived
// total changes implicitly on the next read.
func (s *APUServiceImpl) AddItem(ctx context.Context, apuID string, in model.APUItemInput) (*model.APUItem, error) {
	if _, err := s.apuRepo.GetByID(ctx, apuID); err != nil {
		return nil, err
	}

	var v model.ValidationError
	item, err := s.resolveItem(ctx, in, "item", &v)
	if err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	item.APUID = apuID

	if err := s.apuRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a partial update to one line and returns it.
func (s *APUServiceImpl) UpdateItem(ctx context.Context, apuID, itemID string, patch model.APUItemPatch) (*model.APUItem, error) {
	item, err := s.apuRepo.GetItem(ctx, apuID, itemID)
	if err != nil {
		return nil, err
	}

	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.CostPerUnit != nil {
		item.CostPerUnit = *patch.CostPerUnit
	}

	var v model.ValidationError
	if !item.Quantity.IsPositive() {
		v.Add("quantity", "must be positive")
	}
	if item.CostPerUnit.IsNegative() {
		v.Add("cost_per_unit", "must not be negative")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.apuRepo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes one line from an APU.
func (s *APUServiceImpl) RemoveItem(ctx context.Context, apuID, itemID string) error {
	return s.apuRepo.RemoveItem(ctx, apuID, itemID)
}
