package domain

import "time"

// AuditAction names what happened to an entity.
type AuditAction string

const (
	AuditCreate   AuditAction = "create"
	AuditUpdate   AuditAction = "update"
	AuditDelete   AuditAction = "delete"
	AuditRegister AuditAction = "register"
	AuditLogin    AuditAction = "login"
)

// Entity types recorded in the audit trail.
const (
	EntityUser    = "user"
	EntityProject = "project"
	EntityIssue   = "issue"
)

// AuditEntry records one successful state change or sign-in.
type AuditEntry struct {
	ID         string      `json:"id"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	ActorID    string      `json:"actor_id"`
	ActorRole  Role        `json:"actor_role"`
	CreatedAt  time.Time   `json:"created_at"`
}
