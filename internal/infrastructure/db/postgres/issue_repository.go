package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

const issueColumns = `id, title, description, status, project_id, assigned_to, created_at, updated_at`

const foreignKeyViolation = "23503"

type IssueRepository struct {
	pool *pgxpool.Pool
}

func NewIssueRepository(pool *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{pool: pool}
}

// Insert reports domain.ErrProjectNotFound when the project vanished between
// the existence check and the write.
func (r *IssueRepository) Insert(ctx context.Context, i *domain.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO issues (`+issueColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID, i.Title, i.Description, string(i.Status), i.ProjectID, i.AssignedTo, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrProjectNotFound
		}
		return err
	}
	return nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	i, err := scanIssue(r.pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *IssueRepository) List(ctx context.Context, f ports.IssueFilter) ([]domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE project_id = $1 ORDER BY created_at`, f.ProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Issue, 0)
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (r *IssueRepository) Update(ctx context.Context, i *domain.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE issues SET title = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`,
		i.ID, i.Title, i.Description, string(i.Status), i.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		i      domain.Issue
		status string
	)
	if err := row.Scan(&i.ID, &i.Title, &i.Description, &status, &i.ProjectID, &i.AssignedTo, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.Status = domain.IssueStatus(status)
	i.CreatedAt = i.CreatedAt.UTC()
	i.UpdatedAt = i.UpdatedAt.UTC()
	return &i, nil
}
