package ports

import (
	"context"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Compare returns nil on match
// and domain.ErrInvalidCredentials on mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	Verify(token string) (domain.Principal, error)
}

// Authorizer decides whether a principal may act on a resource owned by
// ownerID.
type Authorizer interface {
	Authorize(principal domain.Principal, ownerID string) domain.Decision
}

// LoginThrottle tracks failed sign-ins per email.
type LoginThrottle interface {
	Locked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuditRecorder accepts audit entries for asynchronous persistence.
type AuditRecorder interface {
	Record(entry domain.AuditEntry)
}
