// Package memory is a process-local store used for STORE_DRIVER=memory and
// in tests. Every method copies values in and out.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	emails   map[string]string
	projects map[string]domain.Project
	issues   map[string]domain.Issue
	audit    []domain.AuditEntry
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		projects: make(map[string]domain.Project),
		issues:   make(map[string]domain.Issue),
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s} }
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s} }
func (s *Store) Issues() *IssueRepository     { return &IssueRepository{s} }
func (s *Store) Audit() *AuditRepository      { return &AuditRepository{s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type UserRepository struct{ s *Store }

func (r *UserRepository) Insert(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.emails[user.Email]; taken {
		return domain.ErrEmailTaken
	}
	r.s.users[user.ID] = *user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) Insert(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r *ProjectRepository) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (r *ProjectRepository) List(_ context.Context, f ports.ProjectFilter) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		if f.OwnerID != "" && p.OwnerUserID != f.OwnerID {
			continue
		}
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ProjectRepository) Update(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r *ProjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.s.projects, id)
	for iid, issue := range r.s.issues {
		if issue.ProjectID == id {
			delete(r.s.issues, iid)
		}
	}
	return nil
}

type IssueRepository struct{ s *Store }

func (r *IssueRepository) Insert(_ context.Context, i *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[i.ProjectID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.s.issues[i.ID] = cloneIssue(*i)
	return nil
}

func (r *IssueRepository) FindByID(_ context.Context, id string) (*domain.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.issues[id]
	if !ok {
		return nil, domain.ErrIssueNotFound
	}
	i = cloneIssue(i)
	return &i, nil
}

func (r *IssueRepository) List(_ context.Context, f ports.IssueFilter) ([]domain.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Issue, 0)
	for _, i := range r.s.issues {
		if i.ProjectID == f.ProjectID {
			out = append(out, cloneIssue(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}

func (r *IssueRepository) Update(_ context.Context, i *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.issues[i.ID]; !ok {
		return domain.ErrIssueNotFound
	}
	r.s.issues[i.ID] = cloneIssue(*i)
	return nil
}

func (r *IssueRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.issues[id]; !ok {
		return domain.ErrIssueNotFound
	}
	delete(r.s.issues, id)
	return nil
}

type AuditRepository struct{ s *Store }

func (r *AuditRepository) Insert(_ context.Context, e *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *e)
	return nil
}

// List walks entries newest first.
func (r *AuditRepository) List(_ context.Context, f ports.AuditFilter) ([]domain.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.AuditEntry, 0)
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		e := r.s.audit[i]
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func cloneProject(p domain.Project) domain.Project {
	p.Description = cloneString(p.Description)
	return p
}

func cloneIssue(i domain.Issue) domain.Issue {
	i.Description = cloneString(i.Description)
	return i
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
