package tenancy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-legal/lexora/internal/platform/db"
	"github.com/lexora-legal/lexora/internal/shared"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type pgTxRepository struct {
	tx pgx.Tx
}

// WithTx runs fn inside one plain transaction. Resolution deliberately
// does not use a tenant-scoped transaction: the firm row may not exist
// yet, and the users and firms tables sit outside row-level security.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

func (t *pgTxRepository) GetPrincipal(ctx context.Context, principalID int64) (*PrincipalRecord, error) {
	var rec PrincipalRecord
	var firmID pgtype.UUID
	var roleID pgtype.Int8
	err := t.tx.QueryRow(ctx, `SELECT id, email, firm_id, role_id FROM users WHERE id = $1`, principalID).
		Scan(&rec.ID, &rec.Email, &firmID, &roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if firmID.Valid {
		parsed, err := uuid.FromBytes(firmID.Bytes[:])
		if err != nil {
			return nil, err
		}
		rec.FirmID = &parsed
	}
	if roleID.Valid {
		v := roleID.Int64
		rec.RoleID = &v
	}
	return &rec, nil
}

func (t *pgTxRepository) CreateFirm(ctx context.Context, firm Firm) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO firms (id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`, firm.ID, firm.Name)
	return err
}

func (t *pgTxRepository) BindPrincipal(ctx context.Context, principalID int64, firmID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `UPDATE users SET firm_id = $2, updated_at = NOW() WHERE id = $1`, principalID, firmID)
	return err
}

// GetFirm loads firm settings under the firm's own tenant scope.
func (r *PGRepository) GetFirm(ctx context.Context, firmID uuid.UUID) (*Firm, error) {
	var firm Firm
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		var createdAt, updatedAt pgtype.Timestamptz
		err := tx.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM firms WHERE id = $1`, firmID).
			Scan(&firm.ID, &firm.Name, &createdAt, &updatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		firm.CreatedAt = safeTime(createdAt.Time)
		firm.UpdatedAt = safeTime(updatedAt.Time)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &firm, nil
}

// RenameFirm updates the firm display name under tenant scope.
func (r *PGRepository) RenameFirm(ctx context.Context, firmID uuid.UUID, name string) (*Firm, error) {
	var firm Firm
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		var createdAt, updatedAt pgtype.Timestamptz
		err := tx.QueryRow(ctx, `UPDATE firms SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING id, name, created_at, updated_at`, firmID, name).
			Scan(&firm.ID, &firm.Name, &createdAt, &updatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		firm.CreatedAt = safeTime(createdAt.Time)
		firm.UpdatedAt = safeTime(updatedAt.Time)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &firm, nil
}

func safeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t
}

var _ Repository = (*PGRepository)(nil)
