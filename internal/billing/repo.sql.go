package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// CreateEntry inserts a time entry and records an audit row.
func (r *PGRepository) CreateEntry(ctx context.Context, firmID uuid.UUID, entry *TimeEntry) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO time_entries (id, firm_id, matter_id, user_id, description, minutes, rate_cents, entry_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			RETURNING created_at`,
			entry.ID, firmID, entry.MatterID, entry.UserID, entry.Description, entry.Minutes, entry.RateCents, entry.EntryDate).
			Scan(&entry.CreatedAt)
		if err != nil {
			return err
		}
		return shared.RecordAudit(ctx, tx, shared.AuditLog{
			ActorID:  entry.UserID,
			Action:   "billing.entry.create",
			Entity:   "time_entry",
			EntityID: entry.ID.String(),
			Meta:     map[string]any{"matterId": entry.MatterID.String(), "minutes": entry.Minutes},
		})
	})
}

// ListEntries returns a matter's time entries, oldest first.
func (r *PGRepository) ListEntries(ctx context.Context, firmID, matterID uuid.UUID) ([]TimeEntry, error) {
	var out []TimeEntry
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, firm_id, matter_id, user_id, description, minutes, rate_cents, entry_date, created_at
			FROM time_entries WHERE matter_id = $1
			ORDER BY entry_date, created_at`, matterID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var e TimeEntry
			if err := rows.Scan(&e.ID, &e.FirmID, &e.MatterID, &e.UserID, &e.Description, &e.Minutes, &e.RateCents, &e.EntryDate, &e.CreatedAt); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteEntry removes a time entry.
func (r *PGRepository) DeleteEntry(ctx context.Context, firmID, id uuid.UUID) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
