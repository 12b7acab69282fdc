package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Mock APURepository
// ---------------------------------------------------------------------------

type mockAPURepository struct {
	getByIDFunc    func(ctx context.Context, id string) (*model.APU, error)
	getByCodeFunc  func(ctx context.Context, code string) (*model.APU, error)
	listFunc       func(ctx context.Context, limit, offset int) ([]*model.APU, error)
	createFunc     func(ctx context.Context, apu *model.APU) error
	updateFunc     func(ctx context.Context, apu *model.APU) error
	deleteFunc     func(ctx context.Context, id string) error
	addItemFunc    func(ctx context.Context, item *model.APUItem) error
	getItemFunc    func(ctx context.Context, apuID, itemID string) (*model.APUItem, error)
	updateItemFunc func(ctx context.Context, item *model.APUItem) error
	removeItemFunc func(ctx context.Context, apuID, itemID string) error

	referencedOutsideProjectFunc func(ctx context.Context, apuID, projectID string) (bool, error)
}

func (m *mockAPURepository) GetByID(ctx context.Context, id string) (*model.APU, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockAPURepository) GetByCode(ctx context.Context, code string) (*model.APU, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, code)
	}
	return nil, repository.ErrNotFound
}
func (m *mockAPURepository) List(ctx context.Context, limit, offset int) ([]*model.APU, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}
func (m *mockAPURepository) Create(ctx context.Context, apu *model.APU) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, apu)
	}
	return nil
}
func (m *mockAPURepository) Update(ctx context.Context, apu *model.APU) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, apu)
	}
	return nil
}
func (m *mockAPURepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}
func (m *mockAPURepository) AddItem(ctx context.Context, item *model.APUItem) error {
	if m.addItemFunc != nil {
		return m.addItemFunc(ctx, item)
	}
	return nil
}
func (m *mockAPURepository) GetItem(ctx context.Context, apuID, itemID string) (*model.APUItem, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, apuID, itemID)
	}
	return nil, repository.ErrNotFound
}
func (m *mockAPURepository) UpdateItem(ctx context.Context, item *model.APUItem) error {
	if m.updateItemFunc != nil {
		return m.updateItemFunc(ctx, item)
	}
	return nil
}
func (m *mockAPURepository) RemoveItem(ctx context.Context, apuID, itemID string) error {
	if m.removeItemFunc != nil {
		return m.removeItemFunc(ctx, apuID, itemID)
	}
	return nil
}
func (m *mockAPURepository) ReferencedOutsideProject(ctx context.Context, apuID, projectID string) (bool, error) {
	if m.referencedOutsideProjectFunc != nil {
		return m.referencedOutsideProjectFunc(ctx, apuID, projectID)
	}
	return false, nil
}

func cementResourceRepo() *mockResourceRepository {
	return &mockResourceRepository{
		getByIDFunc: func(_ context.Context, id string) (*model.Resource, error) {
			if id == "r-cement" {
				return &model.Resource{
					ID:       "r-cement",
					Name:     "Cement",
					Type:     model.ResourceTypeMaterial,
					Unit:     "bag",
					UnitCost: decimal.RequireFromString("10.00"),
					Currency: "USD",
				}, nil
			}
			return nil, repository.ErrNotFound
		},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAPUService_Create_SnapshotsResourceCost(t *testing.T) {
	ctx := context.Background()
	var created *model.APU
	apus := &mockAPURepository{
		createFunc: func(_ context.Context, apu *model.APU) error {
			created = apu
			return nil
		},
	}
	svc := NewAPUService(apus, cementResourceRepo(), &mockProjectRepository{})

	apu := &model.APU{Code: "APU-01", Description: "Concrete m3", Unit: "m3"}
	items := []model.APUItemInput{
		{ResourceID: "r-cement", Quantity: decimal.RequireFromString("5")},
	}
	if err := svc.Create(ctx, apu, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(created.Items))
	}
	if !created.Items[0].CostPerUnit.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected snapshot of resource unit cost, got %s", created.Items[0].CostPerUnit)
	}
	if !apu.TotalCost.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("expected total 50.00, got %s", apu.TotalCost)
	}
}

func TestAPUService_Create_ExplicitCostOverridesSnapshot(t *testing.T) {
	ctx := context.Background()
	var created *model.APU
	apus := &mockAPURepository{
		createFunc: func(_ context.Context, apu *model.APU) error {
			created = apu
			return nil
		},
	}
	svc := NewAPUService(apus, cementResourceRepo(), &mockProjectRepository{})

	cost := decimal.RequireFromString("8.75")
	items := []model.APUItemInput{
		{ResourceID: "r-cement", Quantity: decimal.RequireFromString("2"), CostPerUnit: &cost},
	}
	err := svc.Create(ctx, &model.APU{Code: "APU-02", Description: "Mortar", Unit: "m2"}, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Items[0].CostPerUnit.Equal(cost) {
		t.Errorf("expected explicit cost 8.75, got %s", created.Items[0].CostPerUnit)
	}
}

func TestAPUService_Create_InvalidItems(t *testing.T) {
	ctx := context.Background()
	svc := NewAPUService(&mockAPURepository{}, cementResourceRepo(), &mockProjectRepository{})

	items := []model.APUItemInput{
		{ResourceID: "no-such", Quantity: decimal.RequireFromString("1")},
		{ResourceID: "r-cement", Quantity: decimal.Zero},
	}
	err := svc.Create(ctx, &model.APU{Code: "APU-03", Description: "X", Unit: "m"}, items)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", ve.Fields)
	}
	if ve.Fields[0].Field != "items[0].resource_id" || ve.Fields[1].Field != "items[1].quantity" {
		t.Errorf("unexpected fields: %+v", ve.Fields)
	}
}

func TestAPUService_Create_ReportsAllItemDefects(t *testing.T) {
	ctx := context.Background()
	svc := NewAPUService(&mockAPURepository{}, cementResourceRepo(), &mockProjectRepository{})

	items := []model.APUItemInput{
		{ResourceID: "no-such", Quantity: decimal.Zero},
	}
	err := svc.Create(ctx, &model.APU{Code: "APU-05", Description: "X", Unit: "m"}, items)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected both defects reported, got %+v", ve.Fields)
	}
	if ve.Fields[0].Field != "items[0].resource_id" || ve.Fields[1].Field != "items[0].quantity" {
		t.Errorf("unexpected fields: %+v", ve.Fields)
	}
}

func TestAPUService_Create_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	apus := &mockAPURepository{
		getByCodeFunc: func(_ context.Context, code string) (*model.APU, error) {
			if code == "APU-01" {
				return &model.APU{ID: "existing", Code: "APU-01"}, nil
			}
			return nil, repository.ErrNotFound
		},
		createFunc: func(_ context.Context, _ *model.APU) error {
			t.Error("Create must not reach the repository on a code collision")
			return nil
		},
	}
	svc := NewAPUService(apus, cementResourceRepo(), &mockProjectRepository{})

	err := svc.Create(ctx, &model.APU{Code: "APU-01", Description: "Dup", Unit: "m3"}, nil)
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate code, got %v", err)
	}
}

func TestAPUService_Update_KeepingOwnCodeIsNotAConflict(t *testing.T) {
	ctx := context.Background()
	existing := &model.APU{ID: "a1", Code: "APU-01", Description: "Concrete", Unit: "m3"}
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, _ string) (*model.APU, error) {
			return existing, nil
		},
		getByCodeFunc: func(_ context.Context, _ string) (*model.APU, error) {
			return existing, nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, &mockProjectRepository{})

	code := "APU-01"
	if _, err := svc.Update(ctx, "a1", model.APUPatch{Code: &code}); err != nil {
		t.Errorf("re-submitting an APU's own code must not conflict, got %v", err)
	}
}

func TestAPUService_Create_UnknownProject(t *testing.T) {
	ctx := context.Background()
	svc := NewAPUService(&mockAPURepository{}, cementResourceRepo(), &mockProjectRepository{})

	projectID := "ghost"
	err := svc.Create(ctx, &model.APU{Code: "APU-04", Description: "X", Unit: "m", ProjectID: &projectID}, nil)
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "project_id" {
		t.Errorf("expected project_id failure, got %+v", ve.Fields)
	}
}

func TestAPUService_GetByID_RecomputesTotal(t *testing.T) {
	ctx := context.Background()
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, id string) (*model.APU, error) {
			return &model.APU{
				ID: id,
				Items: []*model.APUItem{
					{Quantity: decimal.RequireFromString("5"), CostPerUnit: decimal.RequireFromString("12.00")},
				},
			}, nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, &mockProjectRepository{})

	apu, err := svc.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !apu.TotalCost.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("expected total 60.00, got %s", apu.TotalCost)
	}
}

func TestAPUService_Update_DetachFromProject(t *testing.T) {
	ctx := context.Background()
	projectID := "p1"
	existing := &model.APU{ID: "a1", Code: "APU-01", Description: "Concrete", Unit: "m3", ProjectID: &projectID}
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, _ string) (*model.APU, error) {
			return existing, nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, &mockProjectRepository{})

	empty := ""
	got, err := svc.Update(ctx, "a1", model.APUPatch{ProjectID: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProjectID != nil {
		t.Errorf("expected APU to become global, got project %q", *got.ProjectID)
	}
}

func TestAPUService_Update_ReparentBlockedByForeignBudgetItems(t *testing.T) {
	ctx := context.Background()
	existing := &model.APU{ID: "a1", Code: "APU-01", Description: "Concrete", Unit: "m3"}
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, _ string) (*model.APU, error) {
			return existing, nil
		},
		referencedOutsideProjectFunc: func(_ context.Context, apuID, projectID string) (bool, error) {
			return apuID == "a1" && projectID == "p2", nil
		},
		updateFunc: func(_ context.Context, _ *model.APU) error {
			t.Error("Update must not persist a reparent that strands budget items")
			return nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, existingProjectRepo("p2"))

	projectID := "p2"
	_, err := svc.Update(ctx, "a1", model.APUPatch{ProjectID: &projectID})
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("expected ErrConflict for reparent with foreign budget references, got %v", err)
	}
}

func TestAPUService_Update_ReparentWithoutReferencesSucceeds(t *testing.T) {
	ctx := context.Background()
	existing := &model.APU{ID: "a1", Code: "APU-01", Description: "Concrete", Unit: "m3"}
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, _ string) (*model.APU, error) {
			return existing, nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, existingProjectRepo("p2"))

	projectID := "p2"
	got, err := svc.Update(ctx, "a1", model.APUPatch{ProjectID: &projectID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProjectID == nil || *got.ProjectID != "p2" {
		t.Errorf("expected APU scoped to p2, got %v", got.ProjectID)
	}
}

func TestAPUService_AddItem_SnapshotsCurrentPrice(t *testing.T) {
	ctx := context.Background()
	var added *model.APUItem
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, id string) (*model.APU, error) {
			return &model.APU{ID: id}, nil
		},
		addItemFunc: func(_ context.Context, item *model.APUItem) error {
			added = item
			return nil
		},
	}
	svc := NewAPUService(apus, cementResourceRepo(), &mockProjectRepository{})

	item, err := svc.AddItem(ctx, "a1", model.APUItemInput{
		ResourceID: "r-cement",
		Quantity:   decimal.RequireFromString("3"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added.APUID != "a1" {
		t.Errorf("expected item bound to a1, got %q", added.APUID)
	}
	if !item.CostPerUnit.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected snapshot cost 10.00, got %s", item.CostPerUnit)
	}
}

func TestAPUService_AddItem_UnknownAPU(t *testing.T) {
	ctx := context.Background()
	svc := NewAPUService(&mockAPURepository{}, cementResourceRepo(), &mockProjectRepository{})

	_, err := svc.AddItem(ctx, "no-such", model.APUItemInput{
		ResourceID: "r-cement",
		Quantity:   decimal.RequireFromString("1"),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAPUService_UpdateItem_RejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	apus := &mockAPURepository{
		getItemFunc: func(_ context.Context, apuID, itemID string) (*model.APUItem, error) {
			return &model.APUItem{
				ID:          itemID,
				APUID:       apuID,
				Quantity:    decimal.RequireFromString("5"),
				CostPerUnit: decimal.RequireFromString("10.00"),
			}, nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, &mockProjectRepository{})

	zero := decimal.Zero
	_, err := svc.UpdateItem(ctx, "a1", "i1", model.APUItemPatch{Quantity: &zero})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestAPUService_UpdateItem_ChangesPrice(t *testing.T) {
	ctx := context.Background()
	var updated *model.APUItem
	apus := &mockAPURepository{
		getItemFunc: func(_ context.Context, apuID, itemID string) (*model.APUItem, error) {
			return &model.APUItem{
				ID:          itemID,
				APUID:       apuID,
				Quantity:    decimal.RequireFromString("5"),
				CostPerUnit: decimal.RequireFromString("10.00"),
			}, nil
		},
		updateItemFunc: func(_ context.Context, item *model.APUItem) error {
			updated = item
			return nil
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, &mockProjectRepository{})

	cost := decimal.RequireFromString("12.00")
	item, err := svc.UpdateItem(ctx, "a1", "i1", model.APUItemPatch{CostPerUnit: &cost})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.CostPerUnit.Equal(cost) {
		t.Errorf("expected persisted cost 12.00, got %s", updated.CostPerUnit)
	}
	if !item.LineTotal().Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("expected line total 60.00, got %s", item.LineTotal())
	}
}

func TestAPUService_Delete_ConflictWhileReferenced(t *testing.T) {
	ctx := context.Background()
	apus := &mockAPURepository{
		getByIDFunc: func(_ context.Context, id string) (*model.APU, error) {
			return &model.APU{ID: id}, nil
		},
		deleteFunc: func(_ context.Context, _ string) error {
			return repository.ErrConflict
		},
	}
	svc := NewAPUService(apus, &mockResourceRepository{}, &mockProjectRepository{})

	_, err := svc.Delete(ctx, "a1")
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}
