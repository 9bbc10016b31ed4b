package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

// DefaultTokenTTL is the fixed validity window of a session token.
const DefaultTokenTTL = 3 * time.Hour

type sessionClaims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	ID       int64  `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a TokenService signing with secret. If ttl <= 0,
// DefaultTokenTTL is used.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the wall clock used for issuance and expiry checks.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue signs a token for the given user. Expiry is absolute.
func (s *TokenService) Issue(username, name string, id int64) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Username: username,
		Name:     name,
		ID:       id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and expiry. Failures are *domain.AuthError values
// whose Reason tells expired, malformed and bad-signature tokens apart.
func (s *TokenService) Verify(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.NewAuthenticationError(domain.ReasonTokenMissing, nil)
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.NewAuthenticationError(tokenFailureReason(err), err)
	}
	if !parsed.Valid {
		return nil, domain.NewAuthenticationError(domain.ReasonTokenInvalid, nil)
	}

	return claims.toDomain(), nil
}

// Decode reads the claims without checking the signature. Never use the
// result for authorization.
func (s *TokenService) Decode(token string) (*domain.Claims, error) {
	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, domain.NewAuthenticationError(domain.ReasonTokenMalformed, err)
	}
	return claims.toDomain(), nil
}

func tokenFailureReason(err error) domain.Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ReasonTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ReasonTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ReasonTokenBadSignature
	default:
		return domain.ReasonTokenInvalid
	}
}

func (c *sessionClaims) toDomain() *domain.Claims {
	return &domain.Claims{
		Username: c.Username,
		Name:     c.Name,
		ID:       c.ID,
		Provider: domain.ProviderLocal,
	}
}
