package domain

import "time"

// Project is an owned resource. OwnerUserID is set once from the creating
// principal and never changes.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	OwnerUserID string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) EntityID() string { return p.ID }
func (p *Project) OwnerID() string  { return p.OwnerUserID }

// ProjectChanges is the full replacement set for a project update. Fields
// left nil are written as null, not preserved.
type ProjectChanges struct {
	Title       string
	Description *string
}

// Apply overwrites the mutable fields with c.
func (p *Project) Apply(c ProjectChanges, at time.Time) {
	p.Title = c.Title
	p.Description = c.Description
	p.UpdatedAt = at
}
