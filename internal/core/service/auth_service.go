package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

// AuthService implements registration, login and token authentication.
type AuthService struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	tokens     ports.TokenService
	throttle   ports.LoginThrottle
	audit      ports.AuditRecorder
	revalidate bool
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: noopThrottle{},
		audit:    noopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
}

// WithThrottle enables failed-login lockout.
func (s *AuthService) WithThrottle(t ports.LoginThrottle) *AuthService {
	s.throttle = t
	return s
}

func (s *AuthService) WithAudit(r ports.AuditRecorder) *AuthService {
	s.audit = r
	return s
}

// WithRevalidation makes Authenticate reload the user and trust the stored
// role instead of the one in the token.
func (s *AuthService) WithRevalidation(enabled bool) *AuthService {
	s.revalidate = enabled
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.Validation("username, email and password are required")
	}
	if !looksLikeEmail(email) {
		return nil, domain.Validation("email is not valid")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.Dependency("find user by email", err)
	}

	user, err := s.createUser(ctx, username, email, in.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.Dependency("issue token", err)
	}

	s.record(domain.AuditRegister, domain.EntityUser, user.ID, domain.Principal{UserID: user.ID, Role: user.Role})
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login never reveals whether the email exists: unknown accounts and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}

	locked, err := s.throttle.Locked(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
	} else if locked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Dependency("find user by email", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Dependency("compare password", err)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reset login throttle")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, domain.Dependency("issue token", err)
	}

	s.record(domain.AuditLogin, domain.EntityUser, user.ID, domain.Principal{UserID: user.ID, Role: user.Role})
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	principal, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Principal{}, err
	}
	if !s.revalidate {
		return principal, nil
	}

	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Principal{}, domain.ErrInvalidToken
		}
		return domain.Principal{}, domain.Dependency("find user by id", err)
	}
	principal.Role = user.Role
	return principal, nil
}

func (s *AuthService) Profile(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, domain.Dependency("find user by id", err)
	}
	return user, nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
// An existing account is left untouched whatever its role.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Validation("admin email and password are required")
	}
	if username = strings.TrimSpace(username); username == "" {
		username = "admin"
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.logger.Warn().Str("user_id", existing.ID).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.Dependency("find user by email", err)
	}

	user, err := s.createUser(ctx, username, email, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("bootstrap admin created")
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.Dependency("hash password", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	// Insert maps a unique violation to ErrEmailTaken, which covers a
	// concurrent registration racing the lookup above.
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, domain.Dependency("insert user", err)
	}
	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AuthService) record(action domain.AuditAction, entityType, entityID string, actor domain.Principal) {
	s.audit.Record(newAuditEntry(s.now(), action, entityType, entityID, actor))
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

type noopThrottle struct{}

func (noopThrottle) Locked(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) RecordFailure(context.Context, string) error  { return nil }
func (noopThrottle) Reset(context.Context, string) error          { return nil }

type noopRecorder struct{}

func (noopRecorder) Record(domain.AuditEntry) {}
