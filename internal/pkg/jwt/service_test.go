package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("a-secret", "r-secret", time.Minute, time.Hour)
	id := uuid.New()

	access, err := svc.GenerateAccessToken(id)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(id)
	require.NoError(t, err)

	c, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, c.SessionID)
	assert.False(t, svc.IsRefreshToken(c))

	c, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, c.SessionID)
	assert.True(t, svc.IsRefreshToken(c))
	assert.Equal(t, time.Minute, svc.AccessTTL())
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("a", "r", time.Minute, time.Hour)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	tok, err := svc.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_Invalid(t *testing.T) {
	svc := NewHMACService("a", "r", time.Minute, time.Hour)
	other := NewHMACService("x", "y", time.Minute, time.Hour)

	tok, err := other.GenerateAccessToken(uuid.New())
	require.NoError(t, err)
	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	foreign := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{Issuer: "someone-else"})
	s, err := foreign.SignedString([]byte("a"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(s)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	empty := NewHMACService("", "r", time.Minute, time.Hour)
	_, err = empty.GenerateAccessToken(uuid.New())
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
