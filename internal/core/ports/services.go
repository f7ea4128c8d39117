package ports

import (
	"context"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
	Profile(ctx context.Context, principal domain.Principal) (*domain.User, error)
}

// Authenticator resolves a bearer token to a principal. It is the narrow
// view of AuthService that the HTTP middleware depends on.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

type ProjectInput struct {
	Title       string
	Description *string
}

type ProjectService interface {
	Create(ctx context.Context, principal domain.Principal, in ProjectInput) (*domain.Project, error)
	List(ctx context.Context, principal domain.Principal) ([]domain.Project, error)
	Update(ctx context.Context, principal domain.Principal, id string, in ProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
}

type IssueInput struct {
	Title       string
	Description *string
	Status      domain.IssueStatus
	ProjectID   string
}

type IssueService interface {
	Create(ctx context.Context, principal domain.Principal, in IssueInput) (*domain.Issue, error)
	List(ctx context.Context, principal domain.Principal, projectID string) ([]domain.Issue, error)
	Update(ctx context.Context, principal domain.Principal, id string, in IssueInput) (*domain.Issue, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
}

type AuditService interface {
	List(ctx context.Context, principal domain.Principal, filter AuditFilter) ([]domain.AuditEntry, error)
}
