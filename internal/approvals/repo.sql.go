package approvals

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

// Create inserts a pending approval with an audit row.
func (r *PGRepository) Create(ctx context.Context, firmID uuid.UUID, approval *Approval) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO approvals (id, firm_id, module, ref_id, matter_id, requested_by, status, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			RETURNING created_at`,
			approval.ID, firmID, approval.Module, approval.RefID, approval.MatterID, approval.RequestedBy, string(approval.Status), approval.Note).
			Scan(&approval.CreatedAt)
		if err != nil {
			return err
		}
		return shared.RecordAudit(ctx, tx, shared.AuditLog{
			ActorID:  approval.RequestedBy,
			Action:   "approval.submit",
			Entity:   "approval",
			EntityID: approval.ID.String(),
			Meta:     map[string]any{"module": approval.Module, "ref_id": approval.RefID.String()},
			At:       time.Now().UTC(),
		})
	})
}

// Get loads one approval.
func (r *PGRepository) Get(ctx context.Context, firmID, id uuid.UUID) (*Approval, error) {
	var approval Approval
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT id, firm_id, module, ref_id, matter_id, requested_by, decided_by, status, note, created_at, decided_at
			FROM approvals WHERE id = $1`, id)
		return scanApproval(row, &approval)
	})
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

// List returns the firm's approvals, optionally filtered by status.
func (r *PGRepository) List(ctx context.Context, firmID uuid.UUID, status *ApprovalStatus) ([]Approval, error) {
	var approvals []Approval
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT id, firm_id, module, ref_id, matter_id, requested_by, decided_by, status, note, created_at, decided_at FROM approvals`
		args := []any{}
		if status != nil {
			query += ` WHERE status = $1`
			args = append(args, string(*status))
		}
		query += ` ORDER BY created_at DESC`
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var approval Approval
			if err := scanApproval(rows, &approval); err != nil {
				return err
			}
			approvals = append(approvals, approval)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

// Decide moves a pending approval to its final status with an audit row.
func (r *PGRepository) Decide(ctx context.Context, firmID, id uuid.UUID, decidedBy int64, status ApprovalStatus, note string) (*Approval, error) {
	var approval Approval
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE approvals SET status = $3, decided_by = $4, note = $5, decided_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING id, firm_id, module, ref_id, matter_id, requested_by, decided_by, status, note, created_at, decided_at`,
			id, string(StatusPending), string(status), decidedBy, note)
		if err := scanApproval(row, &approval); err != nil {
			if errors.Is(err, ErrNotFound) {
				// Distinguish a missing row from one already decided.
				var exists bool
				if lookupErr := tx.QueryRow(ctx, `SELECT true FROM approvals WHERE id = $1`, id).Scan(&exists); lookupErr == nil {
					return ErrAlreadyDecided
				}
				return ErrNotFound
			}
			return err
		}
		return shared.RecordAudit(ctx, tx, shared.AuditLog{
			ActorID:  decidedBy,
			Action:   "approval." + string(status),
			Entity:   "approval",
			EntityID: id.String(),
			Meta:     map[string]any{"note": note},
			At:       time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func scanApproval(row pgx.Row, approval *Approval) error {
	var matterID pgtype.UUID
	var decidedBy pgtype.Int8
	var decidedAt pgtype.Timestamptz
	var status string
	err := row.Scan(&approval.ID, &approval.FirmID, &approval.Module, &approval.RefID, &matterID, &approval.RequestedBy, &decidedBy, &status, &approval.Note, &approval.CreatedAt, &decidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	approval.Status = ApprovalStatus(status)
	if matterID.Valid {
		parsed, err := uuid.FromBytes(matterID.Bytes[:])
		if err != nil {
			return err
		}
		approval.MatterID = &parsed
	}
	if decidedBy.Valid {
		v := decidedBy.Int64
		approval.DecidedBy = &v
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		approval.DecidedAt = &t
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
