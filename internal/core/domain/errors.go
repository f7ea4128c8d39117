package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport layer can map it without
// inspecting messages.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimited    Kind = "rate_limited"
	KindDependency     Kind = "dependency"
)

// Error is the error type returned across the core's ports.
//
// A kind-only Error (empty Message) acts as a category sentinel:
// errors.Is(ErrProjectNotFound, ErrNotFound) is true.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches category sentinels by kind. Specific sentinels only match
// themselves, which errors.Is already checks by identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.cause == nil && t.Kind == e.Kind
}

// Category sentinels.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrRateLimited    = &Error{Kind: KindRateLimited}
	ErrDependency     = &Error{Kind: KindDependency}
)

var (
	ErrUnauthenticated    = &Error{Kind: KindAuthentication, Message: "authentication required"}
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "invalid credentials"}
	ErrInvalidToken       = &Error{Kind: KindAuthentication, Message: "invalid token"}
	ErrTokenExpired       = &Error{Kind: KindAuthentication, Message: "token expired"}
	ErrForbidden          = &Error{Kind: KindAuthorization, Message: "access forbidden"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrProjectNotFound    = &Error{Kind: KindNotFound, Message: "project not found"}
	ErrIssueNotFound      = &Error{Kind: KindNotFound, Message: "issue not found"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "email already registered"}
	ErrTooManyAttempts    = &Error{Kind: KindRateLimited, Message: "too many failed login attempts"}
)

// Validation builds a validation error with a caller-facing message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a store or hasher failure. The public message is fixed;
// op and the cause are only for logs. Errors that already carry a kind are
// returned unchanged.
func Dependency(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindDependency, Message: "internal server error", cause: fmt.Errorf("%s: %w", op, err)}
}

// KindOf reports the kind of err. Anything that is not a *Error is a
// dependency failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}

// PublicMessage is the message safe to return to a caller.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindDependency {
		return "internal server error"
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}
