package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the time entry is not visible to the firm.
var ErrNotFound = errors.New("billing: not found")

// Repository defines persistence for time entries. Every method runs
// inside a tenant-scoped transaction pinned to firmID.
type Repository interface {
	CreateEntry(ctx context.Context, firmID uuid.UUID, entry *TimeEntry) error
	ListEntries(ctx context.Context, firmID, matterID uuid.UUID) ([]TimeEntry, error)
	DeleteEntry(ctx context.Context, firmID, id uuid.UUID) error
}
