package matters

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the matter or case does not exist within the
// firm's visibility.
var ErrNotFound = errors.New("matters: not found")

// Repository defines persistence operations for matters and case
// records. Every method executes inside a tenant-scoped transaction
// pinned to firmID.
type Repository interface {
	// CreateMatter allocates the per-firm matter number and inserts the
	// row in the same transaction, filling matter.Number.
	CreateMatter(ctx context.Context, firmID uuid.UUID, matter *Matter) error
	GetMatter(ctx context.Context, firmID, id uuid.UUID) (*Matter, error)
	ListMatters(ctx context.Context, firmID uuid.UUID, req ListMattersRequest) ([]Matter, int, error)
	UpdateMatter(ctx context.Context, firmID uuid.UUID, matter *Matter, actorID int64) error

	CreateCase(ctx context.Context, firmID uuid.UUID, record *CaseRecord) error
	ListCases(ctx context.Context, firmID, matterID uuid.UUID) ([]CaseRecord, error)
}
