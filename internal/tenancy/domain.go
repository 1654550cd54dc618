package tenancy

import (
	"time"

	"github.com/google/uuid"
)

// Firm is the tenant boundary. Every business row in the system belongs
// to exactly one firm and is fenced by row-level security on its id.
type Firm struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resolution is the outcome of resolving a principal's firm.
type Resolution struct {
	FirmID      uuid.UUID
	FirmCreated bool
	RoleGranted bool
}
