package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type ProjectService struct {
	repo   ports.ProjectRepository
	guard  ownedGuard[*domain.Project]
	audit  ports.AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewProjectService(repo ports.ProjectRepository, authz ports.Authorizer, audit ports.AuditRecorder, logger zerolog.Logger) *ProjectService {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &ProjectService{
		repo:   repo,
		guard:  ownedGuard[*domain.Project]{load: repo.FindByID, authz: authz, notFound: domain.ErrProjectNotFound},
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores a project owned by principal. Any owner supplied by the
// client is ignored.
func (s *ProjectService) Create(ctx context.Context, principal domain.Principal, in ports.ProjectInput) (*domain.Project, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	project := &domain.Project{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		OwnerUserID: principal.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, project); err != nil {
		s.logger.Error().Err(err).Msg("failed to create project")
		return nil, domain.Dependency("insert project", err)
	}

	s.audit.Record(newAuditEntry(now, domain.AuditCreate, domain.EntityProject, project.ID, principal))
	s.logger.Info().Str("project_id", project.ID).Str("owner_id", project.OwnerUserID).Msg("project created")
	return project, nil
}

// List returns every project for admins and only owned projects otherwise.
func (s *ProjectService) List(ctx context.Context, principal domain.Principal) ([]domain.Project, error) {
	filter := ports.ProjectFilter{}
	if !principal.IsAdmin() {
		if principal.UserID == "" {
			return nil, domain.ErrUnauthenticated
		}
		filter.OwnerID = principal.UserID
	}

	projects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Dependency("list projects", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

// Update overwrites title and description. A nil description clears it.
func (s *ProjectService) Update(ctx context.Context, principal domain.Principal, id string, in ports.ProjectInput) (*domain.Project, error) {
	project, err := s.guard.check(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}

	project.Apply(domain.ProjectChanges{Title: title, Description: in.Description}, s.now().UTC())
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, domain.Dependency("update project", err)
	}

	s.audit.Record(newAuditEntry(project.UpdatedAt, domain.AuditUpdate, domain.EntityProject, project.ID, principal))
	return project, nil
}

// Delete removes the project together with its issues.
func (s *ProjectService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	project, err := s.guard.check(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, project.ID); err != nil {
		return domain.Dependency("delete project", err)
	}

	s.audit.Record(newAuditEntry(s.now(), domain.AuditDelete, domain.EntityProject, project.ID, principal))
	s.logger.Info().Str("project_id", project.ID).Str("actor_id", principal.UserID).Msg("project deleted")
	return nil
}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Validation("title is required")
	}
	return title, nil
}
