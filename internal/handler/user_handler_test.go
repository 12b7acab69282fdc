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
// Mock UserService
// ---------------------------------------------------------------------------

type mockUserService struct {
	getByIDFunc func(ctx context.Context, id string) (*model.User, error)
	listFunc    func(ctx context.Context, limit, offset int) ([]*model.User, error)
	createFunc  func(ctx context.Context, user *model.User) error
	updateFunc  func(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	deleteFunc  func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockUserService) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}
func (m *mockUserService) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}
func (m *mockUserService) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return nil, repository.ErrNotFound
}
func (m *mockUserService) Delete(ctx context.Context, id string) (*model.User, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestUserHandler_Create_Success(t *testing.T) {
	mock := &mockUserService{
		createFunc: func(_ context.Context, user *model.User) error {
			user.ID = "new-id"
			user.Role = model.RoleUser
			user.IsActive = true
			return nil
		},
	}
	h := NewUserHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"alice","email":"alice@example.com"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d — body: %s", rec.Code, rec.Body.String())
	}
	var resp model.User
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "new-id" || resp.Role != model.RoleUser {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_Create_ValidationFailure(t *testing.T) {
	mock := &mockUserService{
		createFunc: func(_ context.Context, _ *model.User) error {
			var v model.ValidationError
			v.Add("email", "invalid")
			return v.Err()
		},
	}
	h := NewUserHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"username":"alice","email":"nope"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email") {
		t.Errorf("expected field detail in body, got %s", rec.Body.String())
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{})
	req := httptest.NewRequest(http.MethodGet, "/api/users/no-such", nil)
	req.SetPathValue("id", "no-such")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUserHandler_Update_PassesPatch(t *testing.T) {
	var capturedPatch model.UserPatch
	mock := &mockUserService{
		updateFunc: func(_ context.Context, id string, patch model.UserPatch) (*model.User, error) {
			capturedPatch = patch
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	h := NewUserHandler(mock)

	req := httptest.NewRequest(http.MethodPut, "/api/users/u1",
		strings.NewReader(`{"is_active":false}`))
	req.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if capturedPatch.IsActive == nil || *capturedPatch.IsActive {
		t.Errorf("expected is_active=false in patch, got %+v", capturedPatch)
	}
	if capturedPatch.Username != nil {
		t.Error("expected untouched fields to stay nil in patch")
	}
}

func TestUserHandler_Delete_ConflictWhileOwningProjects(t *testing.T) {
	mock := &mockUserService{
		deleteFunc: func(_ context.Context, _ string) (*model.User, error) {
			return nil, repository.ErrConflict
		},
	}
	h := NewUserHandler(mock)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/u1", nil)
	req.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}
