package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// OperatorClaims is the JWT payload for the management surface.
type OperatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies operator tokens. Player-facing endpoints
// are unauthenticated; only the question/pool administration uses this.
type AuthService struct {
	secret       []byte
	expiry       time.Duration
	passwordHash string
}

// NewAuthService creates a new AuthService. passwordHash is a bcrypt hash of
// the operator password; when empty, Login always fails.
func NewAuthService(secret string, expiry time.Duration, passwordHash string) *AuthService {
	return &AuthService{
		secret:       []byte(secret),
		expiry:       expiry,
		passwordHash: passwordHash,
	}
}

// Login checks the operator password and returns a signed token.
func (s *AuthService) Login(password string) (string, error) {
	if s.passwordHash == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := OperatorClaims{
		Role: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates an operator token, returning its claims.
func (s *AuthService) Verify(tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
