package ports

import (
	"context"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

// UserRepository persists accounts. Email lookups expect an already
// normalized address.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// ProjectFilter narrows a project listing. An empty OwnerID lists all.
type ProjectFilter struct {
	OwnerID string
}

type ProjectRepository interface {
	Insert(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	// Delete removes the project and every issue that belongs to it.
	Delete(ctx context.Context, id string) error
}

// IssueFilter narrows an issue listing to one project.
type IssueFilter struct {
	ProjectID string
}

type IssueRepository interface {
	Insert(ctx context.Context, issue *domain.Issue) error
	FindByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	Update(ctx context.Context, issue *domain.Issue) error
	Delete(ctx context.Context, id string) error
}

// AuditFilter narrows an audit listing. Zero fields match everything.
type AuditFilter struct {
	EntityType string
	EntityID   string
	Limit      int
}

type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error)
}
