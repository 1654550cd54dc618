package notifications

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

// Create inserts a feed entry.
func (r *PGRepository) Create(ctx context.Context, firmID uuid.UUID, n *Notification) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO notifications (id, firm_id, recipient_id, kind, message, matter_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING created_at`,
			n.ID, firmID, n.RecipientID, n.Kind, n.Message, n.MatterID).
			Scan(&n.CreatedAt)
	})
}

// ListForRecipient returns a user's feed, newest first.
func (r *PGRepository) ListForRecipient(ctx context.Context, firmID uuid.UUID, recipientID int64, unreadOnly bool) ([]Notification, error) {
	var out []Notification
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			SELECT id, firm_id, recipient_id, kind, message, matter_id, read_at, created_at
			FROM notifications WHERE recipient_id = $1`
		if unreadOnly {
			query += ` AND read_at IS NULL`
		}
		query += ` ORDER BY created_at DESC LIMIT 100`
		rows, err := tx.Query(ctx, query, recipientID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var n Notification
			if err := scanNotification(rows, &n); err != nil {
				return err
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead stamps read_at. Only the recipient may mark their own entries.
func (r *PGRepository) MarkRead(ctx context.Context, firmID, id uuid.UUID, recipientID int64) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE notifications SET read_at = NOW()
			WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL`, id, recipientID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RecipientEmail looks up the delivery address. Users are authz metadata
// and live outside row level security, so a plain pool read suffices.
func (r *PGRepository) RecipientEmail(ctx context.Context, recipientID int64) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, recipientID).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return email, nil
}

func scanNotification(row pgx.Row, n *Notification) error {
	var matterID pgtype.UUID
	var readAt pgtype.Timestamptz
	err := row.Scan(&n.ID, &n.FirmID, &n.RecipientID, &n.Kind, &n.Message, &matterID, &readAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if matterID.Valid {
		parsed, err := uuid.FromBytes(matterID.Bytes[:])
		if err != nil {
			return err
		}
		n.MatterID = &parsed
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
