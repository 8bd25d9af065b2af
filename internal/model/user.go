package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered player. Emails are stored lowercased and unique.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisterUserRequest is the payload for player registration. Registration is
// idempotent by email: re-registering returns the existing user.
type RegisterUserRequest struct {
	Email       string `json:"email" binding:"required,email,max=320"`
	DisplayName string `json:"displayName" binding:"required,min=1,max=100"`
}

// AdminLoginRequest is the payload for the operator login.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required,min=1,max=200"`
}
