package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type stubProjectService struct {
	createFn func(ctx context.Context, p domain.Principal, in ports.ProjectInput) (*domain.Project, error)
	listFn   func(ctx context.Context, p domain.Principal) ([]domain.Project, error)
	updateFn func(ctx context.Context, p domain.Principal, id string, in ports.ProjectInput) (*domain.Project, error)
	deleteFn func(ctx context.Context, p domain.Principal, id string) error
}

func (s *stubProjectService) Create(ctx context.Context, p domain.Principal, in ports.ProjectInput) (*domain.Project, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubProjectService) List(ctx context.Context, p domain.Principal) ([]domain.Project, error) {
	return s.listFn(ctx, p)
}

func (s *stubProjectService) Update(ctx context.Context, p domain.Principal, id string, in ports.ProjectInput) (*domain.Project, error) {
	return s.updateFn(ctx, p, id, in)
}

func (s *stubProjectService) Delete(ctx context.Context, p domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

func TestProjectHandler_Create(t *testing.T) {
	stub := &stubProjectService{
		createFn: func(ctx context.Context, p domain.Principal, in ports.ProjectInput) (*domain.Project, error) {
			if p.UserID != "u-1" {
				t.Fatalf("principal not forwarded: %+v", p)
			}
			if in.Title != "Roadmap" || in.Description == nil || *in.Description != "Q3" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Project{ID: "p-1", Title: in.Title, Description: in.Description, OwnerUserID: p.UserID}, nil
		},
	}
	handler := NewProjectHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/v1/projects", `{"title":"Roadmap","description":"Q3","owner_id":"someone-else"}`)
	if err := handler.Create(withPrincipal(c, "u-1", domain.RoleUser)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var project domain.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &project); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if project.OwnerUserID != "u-1" {
		t.Fatalf("owner_id = %q, want u-1", project.OwnerUserID)
	}
}

func TestProjectHandler_Create_MissingTitle(t *testing.T) {
	handler := NewProjectHandler(&stubProjectService{})

	c, _ := newJSONContext(http.MethodPost, "/api/v1/projects", `{"description":"no title"}`)
	err := handler.Create(withPrincipal(c, "u-1", domain.RoleUser))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if msg := domain.PublicMessage(err); msg != "title is required" {
		t.Fatalf("message = %q", msg)
	}
}

func TestProjectHandler_List_EmptyArray(t *testing.T) {
	stub := &stubProjectService{
		listFn: func(context.Context, domain.Principal) ([]domain.Project, error) {
			return []domain.Project{}, nil
		},
	}
	handler := NewProjectHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/api/v1/projects", "")
	if err := handler.List(withPrincipal(c, "u-1", domain.RoleUser)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestProjectHandler_Update_ForwardsServiceErrors(t *testing.T) {
	for _, want := range []error{domain.ErrProjectNotFound, domain.ErrForbidden} {
		stub := &stubProjectService{
			updateFn: func(ctx context.Context, p domain.Principal, id string, in ports.ProjectInput) (*domain.Project, error) {
				if id != "p-1" {
					t.Fatalf("id = %q", id)
				}
				return nil, want
			},
		}
		handler := NewProjectHandler(stub)

		// An empty body still reaches the service so ownership is decided first.
		c, _ := newJSONContext(http.MethodPut, "/api/v1/projects/p-1", `{}`)
		c.SetParamNames("id")
		c.SetParamValues("p-1")
		if err := handler.Update(withPrincipal(c, "u-2", domain.RoleUser)); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestProjectHandler_Update_OmittedDescriptionIsNil(t *testing.T) {
	stub := &stubProjectService{
		updateFn: func(ctx context.Context, p domain.Principal, id string, in ports.ProjectInput) (*domain.Project, error) {
			if in.Description != nil {
				t.Fatalf("description should be nil, got %q", *in.Description)
			}
			return &domain.Project{ID: id, Title: in.Title}, nil
		},
	}
	handler := NewProjectHandler(stub)

	c, rec := newJSONContext(http.MethodPut, "/api/v1/projects/p-1", `{"title":"Renamed"}`)
	c.SetParamNames("id")
	c.SetParamValues("p-1")
	if err := handler.Update(withPrincipal(c, "u-1", domain.RoleUser)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProjectHandler_Delete(t *testing.T) {
	stub := &stubProjectService{
		deleteFn: func(ctx context.Context, p domain.Principal, id string) error {
			if id != "p-1" || p.Role != domain.RoleAdmin {
				t.Fatalf("unexpected args %s %+v", id, p)
			}
			return nil
		},
	}
	handler := NewProjectHandler(stub)

	c, rec := newJSONContext(http.MethodDelete, "/api/v1/projects/p-1", "")
	c.SetParamNames("id")
	c.SetParamValues("p-1")
	if err := handler.Delete(withPrincipal(c, "root", domain.RoleAdmin)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Code != http.StatusOK || resp.Message != "Deleted successfully" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}
