package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated principal account. FirmID and RoleID
// stay nil until the tenant resolver has bound the principal to a firm.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	FirmID       *uuid.UUID
	RoleID       *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
