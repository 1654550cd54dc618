package matters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-legal/lexora/internal/platform/db"
	"github.com/lexora-legal/lexora/internal/shared"
)

// PGRepository provides PostgreSQL backed persistence. All statements run
// through the tenant-scoped transaction executor so row-level security
// fences every read and write to the active firm.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateMatter allocates the matter number and inserts the matter plus
// an audit row in one tenant transaction. The upsert on the counter row
// takes a row lock, so concurrent creates for the same firm serialize
// and can never commit a duplicate number.
func (r *PGRepository) CreateMatter(ctx context.Context, firmID uuid.UUID, matter *Matter) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		var seq int
		err := tx.QueryRow(ctx, `
			INSERT INTO matter_counters (firm_id, last_seq)
			VALUES ($1, 1)
			ON CONFLICT (firm_id) DO UPDATE SET last_seq = matter_counters.last_seq + 1
			RETURNING last_seq`, firmID).Scan(&seq)
		if err != nil {
			return err
		}
		matter.Number = fmt.Sprintf("M-%d-%04d", time.Now().UTC().Year(), seq)

		err = tx.QueryRow(ctx, `
			INSERT INTO matters (id, firm_id, number, title, client_name, status, opened_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING created_at, updated_at`,
			matter.ID, firmID, matter.Number, matter.Title, matter.ClientName, string(matter.Status), matter.OpenedBy).
			Scan(&matter.CreatedAt, &matter.UpdatedAt)
		if err != nil {
			return err
		}
		return shared.RecordAudit(ctx, tx, shared.AuditLog{
			ActorID:  matter.OpenedBy,
			Action:   "matter.create",
			Entity:   "matter",
			EntityID: matter.ID.String(),
			Meta:     map[string]any{"number": matter.Number},
			At:       time.Now().UTC(),
		})
	})
}

// GetMatter loads one matter visible to the firm.
func (r *PGRepository) GetMatter(ctx context.Context, firmID, id uuid.UUID) (*Matter, error) {
	var matter Matter
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `
			SELECT id, firm_id, number, title, client_name, status, opened_by, created_at, updated_at
			FROM matters WHERE id = $1`, id).
			Scan(&matter.ID, &matter.FirmID, &matter.Number, &matter.Title, &matter.ClientName, &status, &matter.OpenedBy, &matter.CreatedAt, &matter.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		matter.Status = MatterStatus(status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &matter, nil
}

// ListMatters returns a filtered page of matters plus the total count.
func (r *PGRepository) ListMatters(ctx context.Context, firmID uuid.UUID, req ListMattersRequest) ([]Matter, int, error) {
	var matters []Matter
	var total int
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT id, firm_id, number, title, client_name, status, opened_by, created_at, updated_at FROM matters WHERE true`
		countQuery := `SELECT COUNT(*) FROM matters WHERE true`
		args := []any{}
		idx := 1
		if req.Status != nil {
			clause := fmt.Sprintf(" AND status = $%d", idx)
			query += clause
			countQuery += clause
			args = append(args, string(*req.Status))
			idx++
		}
		if req.Search != nil {
			clause := fmt.Sprintf(" AND (title ILIKE '%%' || $%d || '%%' OR client_name ILIKE '%%' || $%d || '%%' OR number ILIKE '%%' || $%d || '%%')", idx, idx, idx)
			query += clause
			countQuery += clause
			args = append(args, *req.Search)
			idx++
		}
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return err
		}
		query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
		args = append(args, req.Limit, req.Offset)

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var matter Matter
			var status string
			if err := rows.Scan(&matter.ID, &matter.FirmID, &matter.Number, &matter.Title, &matter.ClientName, &status, &matter.OpenedBy, &matter.CreatedAt, &matter.UpdatedAt); err != nil {
				return err
			}
			matter.Status = MatterStatus(status)
			matters = append(matters, matter)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return matters, total, nil
}

// UpdateMatter persists title, client and status changes with an audit
// row. actorID identifies who made the edit; opened_by never changes.
func (r *PGRepository) UpdateMatter(ctx context.Context, firmID uuid.UUID, matter *Matter, actorID int64) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE matters SET title = $2, client_name = $3, status = $4, updated_at = NOW()
			WHERE id = $1`,
			matter.ID, matter.Title, matter.ClientName, string(matter.Status))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return shared.RecordAudit(ctx, tx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "matter.update",
			Entity:   "matter",
			EntityID: matter.ID.String(),
			Meta:     map[string]any{"status": string(matter.Status)},
			At:       time.Now().UTC(),
		})
	})
}

// CreateCase files a case record under a matter.
func (r *PGRepository) CreateCase(ctx context.Context, firmID uuid.UUID, record *CaseRecord) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT true FROM matters WHERE id = $1`, record.MatterID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO case_records (id, matter_id, title, court, notes, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING created_at`,
			record.ID, record.MatterID, record.Title, record.Court, record.Notes, record.CreatedBy).
			Scan(&record.CreatedAt)
	})
}

// ListCases returns the case records filed under a matter.
func (r *PGRepository) ListCases(ctx context.Context, firmID, matterID uuid.UUID) ([]CaseRecord, error) {
	var records []CaseRecord
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, matter_id, title, court, notes, created_by, created_at
			FROM case_records WHERE matter_id = $1 ORDER BY created_at DESC`, matterID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var record CaseRecord
			if err := rows.Scan(&record.ID, &record.MatterID, &record.Title, &record.Court, &record.Notes, &record.CreatedBy, &record.CreatedAt); err != nil {
				return err
			}
			records = append(records, record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

var _ Repository = (*PGRepository)(nil)
