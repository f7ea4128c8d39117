package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AuditService exposes the audit trail to administrators.
type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns entries newest first. The limit is clamped to
// [1, maxAuditLimit] and defaults to defaultAuditLimit.
func (s *AuditService) List(ctx context.Context, principal domain.Principal, filter ports.AuditFilter) ([]domain.AuditEntry, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultAuditLimit
	case filter.Limit > maxAuditLimit:
		filter.Limit = maxAuditLimit
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Dependency("list audit entries", err)
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return entries, nil
}

func newAuditEntry(at time.Time, action domain.AuditAction, entityType, entityID string, actor domain.Principal) domain.AuditEntry {
	return domain.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		CreatedAt:  at.UTC(),
	}
}
