package entity

import (
	"time"

	"github.com/google/uuid"
)

// RoleAdmin bypasses contact redaction.
const RoleAdmin = "admin"

// User is a platform account allowed to call authenticated routes.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
