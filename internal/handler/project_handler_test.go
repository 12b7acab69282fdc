package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/costwise/backend/internal/model"
	"github.com/costwise/backend/internal/repository"
)

// ---------------------------------------------------------------------------
// Mock ProjectService
// ---------------------------------------------------------------------------

type mockProjectService struct {
	getByIDFunc func(ctx context.Context, id string) (*model.Project, error)
	listFunc    func(ctx context.Context, limit, offset int) ([]*model.ProjectSummary, error)
	createFunc  func(ctx context.Context, project *model.Project) error
	updateFunc  func(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	deleteFunc  func(ctx context.Context, id string) (*model.Project, error)
}

func (m *mockProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockProjectService) List(ctx context.Context, limit, offset int) ([]*model.ProjectSummary, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}
func (m *mockProjectService) Create(ctx context.Context, project *model.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	return nil
}
func (m *mockProjectService) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return nil, repository.ErrNotFound
}
func (m *mockProjectService) Delete(ctx context.Context, id string) (*model.Project, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestProjectHandler_List_ReturnsSummaries(t *testing.T) {
	mock := &mockProjectService{
		listFunc: func(_ context.Context, _, _ int) ([]*model.ProjectSummary, error) {
			return []*model.ProjectSummary{
				{ID: "p1", Name: "Office Tower", OwnerID: "u1", Status: model.ProjectStatusPlanning},
			}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp []*model.ProjectSummary
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "p1" {
		t.Errorf("expected 1 summary with id=p1, got %v", resp)
	}
}

func TestProjectHandler_Create_ParsesDates(t *testing.T) {
	var created *model.Project
	mock := &mockProjectService{
		createFunc: func(_ context.Context, project *model.Project) error {
			project.ID = "new-id"
			created = project
			return nil
		},
	}
	h := NewProjectHandler(mock)

	body := `{"name":"Office Tower","owner_id":"u1","start_date":"2026-03-01","end_date":"2026-12-31","budget":"500000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if created.StartDate == nil || created.EndDate == nil {
		t.Fatalf("expected parsed dates, got %+v", created)
	}
	if created.Budget == nil || !created.Budget.IsPositive() {
		t.Errorf("expected a positive budget ceiling, got %v", created.Budget)
	}
}

func TestProjectHandler_Create_ValidationFailure(t *testing.T) {
	mock := &mockProjectService{
		createFunc: func(_ context.Context, _ *model.Project) error {
			var v model.ValidationError
			v.Add("owner_id", "no such user")
			return v.Err()
		},
	}
	h := NewProjectHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/projects",
		strings.NewReader(`{"name":"X","owner_id":"ghost"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
}

func TestProjectHandler_Update_RejectsMalformedDate(t *testing.T) {
	mock := &mockProjectService{
		updateFunc: func(_ context.Context, _ string, _ model.ProjectPatch) (*model.Project, error) {
			t.Error("a malformed date must not reach the service")
			return nil, nil
		},
	}
	h := NewProjectHandler(mock)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/p1",
		strings.NewReader(`{"start_date":"2026-13-45"}`))
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "start_date") {
		t.Errorf("expected start_date in field detail, got %s", rec.Body.String())
	}
}

func TestProjectHandler_Create_RejectsMalformedDate(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{
		createFunc: func(_ context.Context, _ *model.Project) error {
			t.Error("a malformed date must not reach the service")
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/projects",
		strings.NewReader(`{"name":"X","owner_id":"u1","end_date":"not-a-date"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d — body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "end_date") {
		t.Errorf("expected end_date in field detail, got %s", rec.Body.String())
	}
}

func TestProjectHandler_Update_PassesPatch(t *testing.T) {
	var capturedPatch model.ProjectPatch
	mock := &mockProjectService{
		updateFunc: func(_ context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
			capturedPatch = patch
			return &model.Project{ID: id, Name: "Office Tower"}, nil
		},
	}
	h := NewProjectHandler(mock)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/p1",
		strings.NewReader(`{"status":"in_progress"}`))
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if capturedPatch.Status == nil || *capturedPatch.Status != "in_progress" {
		t.Errorf("expected status=in_progress in patch, got %+v", capturedPatch)
	}
	if capturedPatch.Name != nil {
		t.Error("expected untouched fields to stay nil in patch")
	}
}

func TestProjectHandler_Delete_NotFound(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{})
	req := httptest.NewRequest(http.MethodDelete, "/api/projects/no-such", nil)
	req.SetPathValue("id", "no-such")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
