package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/projectforge/projectforge-api/internal/core/domain"
)

// Issuer is the iss claim stamped on and required from every token.
const Issuer = "projectforge"

const defaultTokenTTL = 24 * time.Hour

type claims struct {
	jwt.RegisteredClaims
	Role domain.Role `json:"role"`
}

// JWTService signs HS256 tokens carrying the user id and role.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService signs with secret. A non-positive ttl falls back to the default.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for iat/exp and validation.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

func (s *JWTService) Issue(user *domain.User) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: user.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry. Expired tokens yield
// domain.ErrTokenExpired, anything else malformed yields domain.ErrInvalidToken.
func (s *JWTService) Verify(token string) (domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, domain.ErrTokenExpired
		}
		return domain.Principal{}, domain.ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" || !c.Role.Valid() {
		return domain.Principal{}, domain.ErrInvalidToken
	}
	return domain.Principal{UserID: c.Subject, Role: c.Role}, nil
}
