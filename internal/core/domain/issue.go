package domain

import "time"

// IssueStatus is the workflow state of an issue.
type IssueStatus string

const (
	StatusOpen       IssueStatus = "open"
	StatusInProgress IssueStatus = "in_progress"
	StatusClosed     IssueStatus = "closed"
)

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Issue belongs to exactly one project and is assigned to its creator.
// Authorization compares against AssignedTo.
type Issue struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Status      IssueStatus `json:"status"`
	ProjectID   string      `json:"project_id"`
	AssignedTo  string      `json:"assigned_to"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (i *Issue) EntityID() string { return i.ID }
func (i *Issue) OwnerID() string  { return i.AssignedTo }

// IssueChanges replaces title, description and status wholesale.
type IssueChanges struct {
	Title       string
	Description *string
	Status      IssueStatus
}

func (i *Issue) Apply(c IssueChanges, at time.Time) {
	i.Title = c.Title
	i.Description = c.Description
	i.Status = c.Status
	i.UpdatedAt = at
}
