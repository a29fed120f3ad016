package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("unit-test-secret", 60)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("", 60)
	assert.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)

	token, exp, err := tm.Issue("alice-id", domain.RoleNormal)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(tm.TTL()), exp, 5*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice-id", claims.Subject)
	assert.Equal(t, domain.RoleNormal, claims.Role)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestVerify_TamperedToken(t *testing.T) {
	tm := newTestTokenManager(t)

	token, _, err := tm.Issue("alice-id", domain.RoleAdmin)
	require.NoError(t, err)

	// Flipping any single character must break verification, never return
	// altered claims. Replacements come from a different base64 bit group so
	// the trailing character's discarded padding bits cannot mask the change.
	for i := 0; i < len(token); i++ {
		mutated := []byte(token)
		if mutated[i] >= 'A' && mutated[i] <= 'D' {
			mutated[i] = 'x'
		} else {
			mutated[i] = 'A'
		}
		if string(mutated) == token {
			continue
		}
		_, err := tm.Verify(string(mutated))
		assert.Error(t, err, "mutation at index %d accepted", i)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	tm := newTestTokenManager(t)

	claims := &Claims{
		Role: domain.RoleNormal,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice-id",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	tm := newTestTokenManager(t)
	rotated, err := NewTokenManager("rotated-secret", 60)
	require.NoError(t, err)

	token, _, err := tm.Issue("alice-id", domain.RoleNormal)
	require.NoError(t, err)

	_, err = rotated.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	tm := newTestTokenManager(t)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c", "...."} {
		_, err := tm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerify_UnexpectedSigningMethod(t *testing.T) {
	tm := newTestTokenManager(t)

	claims := &Claims{
		Role: domain.RoleNormal,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString(tm.secret)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_UnknownRole(t *testing.T) {
	tm := newTestTokenManager(t)

	claims := &Claims{
		Role: domain.Role("root"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
