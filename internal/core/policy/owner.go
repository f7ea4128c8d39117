// Package policy holds the authorization rules shared by every owned
// resource.
package policy

import "github.com/projectforge/projectforge-api/internal/core/domain"

// OwnerOrAdmin allows admins everywhere and everyone else only on resources
// they own. It has no state and is safe for concurrent use.
type OwnerOrAdmin struct{}

func NewOwnerOrAdmin() OwnerOrAdmin { return OwnerOrAdmin{} }

func (OwnerOrAdmin) Authorize(principal domain.Principal, ownerID string) domain.Decision {
	if principal.IsAdmin() {
		return domain.Allow
	}
	if principal.UserID == "" {
		return domain.Deny
	}
	return domain.Decision(principal.UserID == ownerID)
}
