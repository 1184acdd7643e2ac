package auth

import (
	"testing"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(now time.Time) *TokenManager {
	m := NewTokenManager(Config{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "venuehub"})
	m.now = func() time.Time { return now }
	return m
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(now)

	token, issued, err := m.Issue(&models.Identity{ID: "8c1f7a52-3f0e-4a52-9d0b-2b7c1d9c0e11", Role: models.RoleVenueOwner})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, models.RoleVenueOwner, claims.Role)
	assert.Equal(t, models.Principal{ID: issued.ID, Role: models.RoleVenueOwner}, claims.Principal())
	assert.Equal(t, time.Hour, m.Remaining(claims))
}

func TestParseExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := newManager(now).Issue(&models.Identity{ID: "id-1", Role: models.RoleClient})
	require.NoError(t, err)

	_, err = newManager(now.Add(2 * time.Hour)).Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrExpiredSession)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	claims := &Claims{ID: "id-1", Role: models.RoleClient, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "venuehub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = NewTokenManager(Config{Secret: "test-secret", Issuer: "venuehub"}).Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrExpiredSession)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager(Config{Secret: "test-secret"}).Parse("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrExpiredSession)
}
