package drafting

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the draft request is not visible to the firm.
var ErrNotFound = errors.New("drafting: not found")

// Repository defines persistence for draft requests. Every method runs
// inside a tenant-scoped transaction pinned to firmID.
type Repository interface {
	Create(ctx context.Context, firmID uuid.UUID, draft *DraftRequest) error
	Get(ctx context.Context, firmID, id uuid.UUID) (*DraftRequest, error)
	List(ctx context.Context, firmID uuid.UUID) ([]DraftRequest, error)
	MarkRunning(ctx context.Context, firmID, id uuid.UUID) error
	Complete(ctx context.Context, firmID, id uuid.UUID, result string) error
	Fail(ctx context.Context, firmID, id uuid.UUID, reason string) error
}
