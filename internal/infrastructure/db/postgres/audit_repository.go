package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, action, entity_type, entity_id, actor_id, actor_role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, string(e.Action), e.EntityType, e.EntityID, e.ActorID, string(e.ActorRole), e.CreatedAt)
	return err
}

func (r *AuditRepository) List(ctx context.Context, f ports.AuditFilter) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args := auditQuery(f)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			e            domain.AuditEntry
			action, role string
		)
		if err := rows.Scan(&e.ID, &action, &e.EntityType, &e.EntityID, &e.ActorID, &role, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		e.ActorRole = domain.Role(role)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func auditQuery(f ports.AuditFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if f.EntityID != "" {
		args = append(args, f.EntityID)
		where = append(where, fmt.Sprintf("entity_id = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT id, action, entity_type, entity_id, actor_id, actor_role, created_at FROM audit_logs`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}
