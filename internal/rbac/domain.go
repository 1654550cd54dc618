package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named permission bundle scoped to one firm. A principal holds
// at most one role per firm.
type Role struct {
	ID          int64
	FirmID      uuid.UUID
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultRoleName is the role lazily created when a principal first
// reaches a firm without any role.
const DefaultRoleName = "member"
