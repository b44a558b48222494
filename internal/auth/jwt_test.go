package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdefghijklmnopqrstuvwxyz"

func newTestService() *JWTService {
	return NewJWTService(testSecret, time.Hour, 24*time.Hour)
}

func TestJWTService_AccessRoundTrip(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccess(userID, "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
}

func TestJWTService_RefreshTokenRejectedAsAccess(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateRefresh(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.Error(t, err)

	claims, err := svc.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, tokenTypeRefresh, claims.TokenType)
}

func TestJWTService_AccessTokenRejectedAsRefresh(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccess(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyRefresh(token)
	assert.Error(t, err)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccess(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	other := NewJWTService("zyxwvutsrqponmlkjihgfedcba9876543210", time.Hour, 24*time.Hour)
	_, err = other.VerifyAccess(token)
	assert.Error(t, err)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService(testSecret, -time.Minute, -time.Minute)

	token, err := svc.GenerateAccess(uuid.New(), "alice@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.VerifyAccess("not.a.token")
	assert.Error(t, err)
}
