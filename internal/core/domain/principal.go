package domain

// Principal is the authenticated identity attached to a request after token
// verification.
type Principal struct {
	UserID string `json:"id"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the principal bypasses ownership checks.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Owned is implemented by every resource with a single owner field used for
// access control.
type Owned interface {
	EntityID() string
	OwnerID() string
}
