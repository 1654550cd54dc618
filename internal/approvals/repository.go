package approvals

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indicates the approval is not visible to the firm.
	ErrNotFound = errors.New("approvals: not found")
	// ErrAlreadyDecided indicates the approval is no longer pending.
	ErrAlreadyDecided = errors.New("approvals: already decided")
)

// Repository defines persistence for approvals. Every method runs inside
// a tenant-scoped transaction pinned to firmID.
type Repository interface {
	Create(ctx context.Context, firmID uuid.UUID, approval *Approval) error
	Get(ctx context.Context, firmID, id uuid.UUID) (*Approval, error)
	List(ctx context.Context, firmID uuid.UUID, status *ApprovalStatus) ([]Approval, error)
	Decide(ctx context.Context, firmID, id uuid.UUID, decidedBy int64, status ApprovalStatus, note string) (*Approval, error)
}
