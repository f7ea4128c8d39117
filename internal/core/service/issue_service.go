package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type IssueService struct {
	issues   ports.IssueRepository
	projects ports.ProjectRepository
	guard    ownedGuard[*domain.Issue]
	audit    ports.AuditRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

func NewIssueService(issues ports.IssueRepository, projects ports.ProjectRepository, authz ports.Authorizer, audit ports.AuditRecorder, logger zerolog.Logger) *IssueService {
	if audit == nil {
		audit = noopRecorder{}
	}
	return &IssueService{
		issues:   issues,
		projects: projects,
		guard:    ownedGuard[*domain.Issue]{load: issues.FindByID, authz: authz, notFound: domain.ErrIssueNotFound},
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores an issue assigned to principal inside an existing project.
func (s *IssueService) Create(ctx context.Context, principal domain.Principal, in ports.IssueInput) (*domain.Issue, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, domain.Validation("project_id is required")
	}
	status, err := statusOrDefault(in.Status)
	if err != nil {
		return nil, err
	}

	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, domain.Dependency("find project", err)
	}

	now := s.now().UTC()
	issue := &domain.Issue{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		ProjectID:   projectID,
		AssignedTo:  principal.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.issues.Insert(ctx, issue); err != nil {
		s.logger.Error().Err(err).Str("project_id", projectID).Msg("failed to create issue")
		return nil, domain.Dependency("insert issue", err)
	}

	s.audit.Record(newAuditEntry(now, domain.AuditCreate, domain.EntityIssue, issue.ID, principal))
	return issue, nil
}

// List returns every issue of a project. It does not filter by assignee, so
// any authenticated principal can read any project's issues.
func (s *IssueService) List(ctx context.Context, principal domain.Principal, projectID string) ([]domain.Issue, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, domain.Validation("project_id query parameter is required")
	}

	issues, err := s.issues.List(ctx, ports.IssueFilter{ProjectID: projectID})
	if err != nil {
		return nil, domain.Dependency("list issues", err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return issues, nil
}

// Update overwrites title, description and status. An empty status resets
// the issue to open.
func (s *IssueService) Update(ctx context.Context, principal domain.Principal, id string, in ports.IssueInput) (*domain.Issue, error) {
	issue, err := s.guard.check(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	title, err := requireTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status, err := statusOrDefault(in.Status)
	if err != nil {
		return nil, err
	}

	issue.Apply(domain.IssueChanges{Title: title, Description: in.Description, Status: status}, s.now().UTC())
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, domain.Dependency("update issue", err)
	}

	s.audit.Record(newAuditEntry(issue.UpdatedAt, domain.AuditUpdate, domain.EntityIssue, issue.ID, principal))
	return issue, nil
}

func (s *IssueService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	issue, err := s.guard.check(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, issue.ID); err != nil {
		return domain.Dependency("delete issue", err)
	}

	s.audit.Record(newAuditEntry(s.now(), domain.AuditDelete, domain.EntityIssue, issue.ID, principal))
	return nil
}

func statusOrDefault(status domain.IssueStatus) (domain.IssueStatus, error) {
	if status == "" {
		return domain.StatusOpen, nil
	}
	if !status.Valid() {
		return "", domain.Validation("status must be one of open, in_progress, closed")
	}
	return status, nil
}
