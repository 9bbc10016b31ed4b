package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displayables/dashboard-api/internal/core/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func requireReason(t *testing.T, err error, reason domain.Reason) {
	t.Helper()
	ae, ok := domain.AsAuthError(err)
	require.True(t, ok, "expected *domain.AuthError, got %T: %v", err, err)
	assert.Equal(t, domain.KindAuthentication, ae.Kind)
	assert.Equal(t, reason, ae.Reason)
}

func TestTokenService_RoundTrip(t *testing.T) {
	clock := newClock()
	svc := NewTokenService("secret", 0).WithClock(clock.Now)

	token, err := svc.Issue("alice", "Alice", 7)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, domain.ProviderLocal, claims.Provider)
}

func TestTokenService_Expiry(t *testing.T) {
	clock := newClock()
	svc := NewTokenService("secret", DefaultTokenTTL).WithClock(clock.Now)

	token, err := svc.Issue("alice", "Alice", 7)
	require.NoError(t, err)

	clock.Advance(DefaultTokenTTL - time.Minute)
	_, err = svc.Verify(token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.Verify(token)
	requireReason(t, err, domain.ReasonTokenExpired)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestTokenService_WrongSecret(t *testing.T) {
	clock := newClock()
	issuer := NewTokenService("secret", 0).WithClock(clock.Now)
	verifier := NewTokenService("other-secret", 0).WithClock(clock.Now)

	token, err := issuer.Issue("alice", "Alice", 7)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	requireReason(t, err, domain.ReasonTokenBadSignature)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("secret", 0)

	_, err := svc.Verify("not-a-token")
	requireReason(t, err, domain.ReasonTokenMalformed)

	_, err = svc.Verify("")
	requireReason(t, err, domain.ReasonTokenMissing)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"username": "mallory",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("secret", 0).Verify(token)
	requireReason(t, err, domain.ReasonTokenBadSignature)
}

func TestTokenService_Decode(t *testing.T) {
	clock := newClock()
	svc := NewTokenService("secret", 0).WithClock(clock.Now)
	token, err := svc.Issue("alice", "Alice", 7)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	claims, err := NewTokenService("unrelated", 0).Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	_, err = svc.Decode("garbage")
	requireReason(t, err, domain.ReasonTokenMalformed)
}
