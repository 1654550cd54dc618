package tenancy

import (
	"context"

	"github.com/google/uuid"
)

// PrincipalRecord is the slice of the users table the resolver reads.
type PrincipalRecord struct {
	ID     int64
	Email  string
	FirmID *uuid.UUID
	RoleID *int64
}

// TxRepository exposes the writes the resolver performs inside one
// transaction.
type TxRepository interface {
	GetPrincipal(ctx context.Context, principalID int64) (*PrincipalRecord, error)
	CreateFirm(ctx context.Context, firm Firm) error
	BindPrincipal(ctx context.Context, principalID int64, firmID uuid.UUID) error
}

// Repository provides persistence for tenant resolution and firm settings.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetFirm(ctx context.Context, firmID uuid.UUID) (*Firm, error)
	RenameFirm(ctx context.Context, firmID uuid.UUID, name string) (*Firm, error)
}
