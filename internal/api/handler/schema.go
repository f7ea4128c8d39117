package handler

import "github.com/projectforge/projectforge-api/internal/core/domain"

// errorResponse documents the envelope written by the central error handler.
type errorResponse struct {
	Kind    string `json:"kind" example:"validation"`
	Message string `json:"message" example:"title is required"`
}

type messageResponse struct {
	Message string `json:"message" example:"Deleted successfully"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

// --- Projects ---

// projectRequest is used for create and update. Update overwrites every
// field, so an omitted description clears it.
type projectRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description *string `json:"description"`
}

// --- Issues ---

type createIssueRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"      validate:"omitempty,oneof=open in_progress closed"`
	ProjectID   string  `json:"project_id"  validate:"required"`
}

// updateIssueRequest overwrites title, description and status. An omitted
// status resets the issue to open.
type updateIssueRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"      validate:"omitempty,oneof=open in_progress closed"`
}

// --- Status ---

type statusResponse struct {
	Status  string `json:"status"  example:"online"`
	Version string `json:"version" example:"1.0.0"`
	Message string `json:"message" example:"ProjectForge API is running"`
}
