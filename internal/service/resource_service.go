package service

import (
	"context"
	"strings"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// ResourceService is the business-logic interface for the resource catalog.
type ResourceService interface {
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	List(ctx context.Context, limit, offset int) ([]*model.Resource, error)
	Create(ctx context.Context, resource *model.Resource) error
	Update(ctx context.Context, id string, patch model.ResourcePatch) (*model.Resource, error)
	// Delete removes a resource and returns the deleted record; rejected
	// with ErrConflict while any APU item references it.
	Delete(ctx context.Context, id string) (*model.Resource, error)
}

// ResourceServiceImpl is the ResourceService implementation.
type ResourceServiceImpl struct {
	resourceRepo repository.ResourceRepository
}

// NewResourceService creates a ResourceServiceImpl.
func NewResourceService(resourceRepo repository.ResourceRepository) ResourceService {
	return &ResourceServiceImpl{resourceRepo: resourceRepo}
}

// GetByID fetches a resource by id.
func (s *ResourceServiceImpl) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

// List returns resources ordered by creation time.
func (s *ResourceServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.Resource, error) {
	return s.resourceRepo.List(ctx, limit, offset)
}

func validateResource(res *model.Resource) error {
	var v model.ValidationError
	if strings.TrimSpace(res.Name) == "" {
		v.Add("name", "required")
	}
	if !model.ValidResourceType(res.Type) {
		v.Add("type", "unknown type")
	}
	if strings.TrimSpace(res.Unit) == "" {
		v.Add("unit", "required")
	}
	if res.UnitCost.IsNegative() {
		v.Add("unit_cost", "must not be negative")
	}
	if len(res.Currency) != 3 {
		v.Add("currency", "must be a 3-letter code")
	}
	return v.Err()
}

// Create validates and persists a new resource. Currency defaults to USD.
func (s *ResourceServiceImpl) Create(ctx context.Context, resource *model.Resource) error {
	if resource.Currency == "" {
		resource.Currency = "USD"
	}
	if err := validateResource(resource); err != nil {
		return err
	}
	return s.resourceRepo.Create(ctx, resource)
}

// Update applies a partial update and returns the updated resource.
// A price change here affects only future APU item snapshots; existing
// items keep the cost they captured.
func (s *ResourceServiceImpl) Update(ctx context.Context, id string, patch model.ResourcePatch) (*model.Resource, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		resource.Name = *patch.Name
	}
	if patch.Description != nil {
		resource.Description = *patch.Description
	}
	if patch.Type != nil {
		resource.Type = *patch.Type
	}
	if patch.Unit != nil {
		resource.Unit = *patch.Unit
	}
	if patch.UnitCost != nil {
		resource.UnitCost = *patch.UnitCost
	}
	if patch.Currency != nil {
		resource.Currency = *patch.Currency
	}
	if patch.Supplier != nil {
		resource.Supplier = *patch.Supplier
	}

	if err := validateResource(resource); err != nil {
		return nil, err
	}

	if err := s.resourceRepo.Update(ctx, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// Delete removes a resource and returns the deleted record.
func (s *ResourceServiceImpl) Delete(ctx context.Context, id string) (*model.Resource, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return resource, nil
}
