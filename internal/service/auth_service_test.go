package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T, password string, expiry time.Duration) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService("test-secret", expiry, string(hash))
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	svc := newAuthService(t, "hunter22", time.Hour)

	token, err := svc.Login("hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Role)
}

func TestAuthService_WrongPassword(t *testing.T) {
	svc := newAuthService(t, "hunter22", time.Hour)

	_, err := svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_NoHashConfigured(t *testing.T) {
	svc := NewAuthService("test-secret", time.Hour, "")

	_, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ExpiredToken(t *testing.T) {
	svc := newAuthService(t, "hunter22", -time.Minute)

	token, err := svc.Login("hunter22")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestAuthService_TamperedToken(t *testing.T) {
	svc := newAuthService(t, "hunter22", time.Hour)
	other := NewAuthService("different-secret", time.Hour, "")

	token, err := svc.Login("hunter22")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}
