package drafting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-legal/lexora/internal/platform/db"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a queued draft request.
func (r *PGRepository) Create(ctx context.Context, firmID uuid.UUID, draft *DraftRequest) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO draft_requests (id, firm_id, matter_id, requested_by, prompt, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING created_at`,
			draft.ID, firmID, draft.MatterID, draft.RequestedBy, draft.Prompt, string(draft.Status)).
			Scan(&draft.CreatedAt)
	})
}

// Get loads one draft request.
func (r *PGRepository) Get(ctx context.Context, firmID, id uuid.UUID) (*DraftRequest, error) {
	var draft DraftRequest
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT id, firm_id, matter_id, requested_by, prompt, result, status, fail_reason, created_at, completed_at
			FROM draft_requests WHERE id = $1`, id)
		return scanDraft(row, &draft)
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// List returns the firm's draft requests, newest first.
func (r *PGRepository) List(ctx context.Context, firmID uuid.UUID) ([]DraftRequest, error) {
	var out []DraftRequest
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, firm_id, matter_id, requested_by, prompt, result, status, fail_reason, created_at, completed_at
			FROM draft_requests ORDER BY created_at DESC LIMIT 100`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var draft DraftRequest
			if err := scanDraft(rows, &draft); err != nil {
				return err
			}
			out = append(out, draft)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRunning flips a queued request to RUNNING.
func (r *PGRepository) MarkRunning(ctx context.Context, firmID, id uuid.UUID) error {
	return r.setStatus(ctx, firmID, id, `
		UPDATE draft_requests SET status = 'RUNNING'
		WHERE id = $1 AND status = 'QUEUED'`)
}

// Complete stores the generated text.
func (r *PGRepository) Complete(ctx context.Context, firmID, id uuid.UUID, result string) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE draft_requests SET status = 'COMPLETED', result = $2, completed_at = NOW()
			WHERE id = $1`, id, result)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Fail records the failure reason.
func (r *PGRepository) Fail(ctx context.Context, firmID, id uuid.UUID, reason string) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE draft_requests SET status = 'FAILED', fail_reason = $2, completed_at = NOW()
			WHERE id = $1`, id, reason)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PGRepository) setStatus(ctx context.Context, firmID, id uuid.UUID, query string) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func scanDraft(row pgx.Row, draft *DraftRequest) error {
	var matterID pgtype.UUID
	var completedAt pgtype.Timestamptz
	var status string
	err := row.Scan(&draft.ID, &draft.FirmID, &matterID, &draft.RequestedBy, &draft.Prompt, &draft.Result, &status, &draft.FailReason, &draft.CreatedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	draft.Status = DraftStatus(status)
	if matterID.Valid {
		parsed, err := uuid.FromBytes(matterID.Bytes[:])
		if err != nil {
			return err
		}
		draft.MatterID = &parsed
	}
	if completedAt.Valid {
		t := completedAt.Time
		draft.CompletedAt = &t
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
