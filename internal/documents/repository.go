package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the document is not visible to the firm.
var ErrNotFound = errors.New("documents: not found")

// Repository defines persistence for document metadata. Every method
// runs inside a tenant-scoped transaction pinned to firmID.
type Repository interface {
	Create(ctx context.Context, firmID uuid.UUID, doc *Document) error
	Get(ctx context.Context, firmID, id uuid.UUID) (*Document, error)
	List(ctx context.Context, firmID uuid.UUID, matterID *uuid.UUID) ([]Document, error)
	Delete(ctx context.Context, firmID, id uuid.UUID) error
}
