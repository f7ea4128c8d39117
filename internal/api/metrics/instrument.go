package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

type instrumentedAuthorizer struct {
	next ports.Authorizer
}

// InstrumentAuthorizer counts every decision made by next.
func InstrumentAuthorizer(next ports.Authorizer) ports.Authorizer {
	return instrumentedAuthorizer{next: next}
}

func (a instrumentedAuthorizer) Authorize(principal domain.Principal, ownerID string) domain.Decision {
	d := a.next.Authorize(principal, ownerID)
	AuthorizationDecisionsTotal.WithLabelValues(d.String(), string(principal.Role)).Inc()
	return d
}

type instrumentedHasher struct {
	next ports.PasswordHasher
}

// InstrumentHasher records hash and compare latency for next.
func InstrumentHasher(next ports.PasswordHasher) ports.PasswordHasher {
	return instrumentedHasher{next: next}
}

func (h instrumentedHasher) Hash(password string) (string, error) {
	start := time.Now()
	defer func() { PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds()) }()
	return h.next.Hash(password)
}

func (h instrumentedHasher) Compare(hash, password string) error {
	start := time.Now()
	defer func() { PasswordHashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds()) }()
	return h.next.Compare(hash, password)
}

type instrumentedAuth struct {
	ports.AuthService
}

// InstrumentAuth counts register and login outcomes of next.
func InstrumentAuth(next ports.AuthService) ports.AuthService {
	return instrumentedAuth{AuthService: next}
}

func (a instrumentedAuth) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	res, err := a.AuthService.Register(ctx, in)
	RegistrationsTotal.WithLabelValues(registerResult(err)).Inc()
	return res, err
}

func (a instrumentedAuth) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	res, err := a.AuthService.Login(ctx, email, password)
	LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	return res, err
}

func registerResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "locked"
	case errors.Is(err, domain.ErrAuthentication), errors.Is(err, domain.ErrValidation):
		return "invalid_credentials"
	default:
		return "error"
	}
}
