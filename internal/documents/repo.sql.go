package documents

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

// Create inserts document metadata.
func (r *PGRepository) Create(ctx context.Context, firmID uuid.UUID, doc *Document) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO documents (id, firm_id, matter_id, name, content_type, size_bytes, checksum, storage_key, uploaded_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			RETURNING created_at`,
			doc.ID, firmID, doc.MatterID, doc.Name, doc.ContentType, doc.SizeBytes, doc.Checksum, doc.StorageKey, doc.UploadedBy).
			Scan(&doc.CreatedAt)
	})
}

// Get loads one document's metadata.
func (r *PGRepository) Get(ctx context.Context, firmID, id uuid.UUID) (*Document, error) {
	var doc Document
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT id, firm_id, matter_id, name, content_type, size_bytes, checksum, storage_key, uploaded_by, created_at
			FROM documents WHERE id = $1`, id)
		return scanDocument(row, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the firm's documents, optionally filtered by matter.
func (r *PGRepository) List(ctx context.Context, firmID uuid.UUID, matterID *uuid.UUID) ([]Document, error) {
	var docs []Document
	err := db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT id, firm_id, matter_id, name, content_type, size_bytes, checksum, storage_key, uploaded_by, created_at FROM documents`
		args := []any{}
		if matterID != nil {
			query += ` WHERE matter_id = $1`
			args = append(args, *matterID)
		}
		query += ` ORDER BY created_at DESC`
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var doc Document
			if err := scanDocument(rows, &doc); err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete removes document metadata and queues the stored object for the
// retention sweep.
func (r *PGRepository) Delete(ctx context.Context, firmID, id uuid.UUID) error {
	return db.WithTenant(ctx, r.pool, firmID, func(ctx context.Context, tx pgx.Tx) error {
		var storageKey string
		err := tx.QueryRow(ctx, `DELETE FROM documents WHERE id = $1 RETURNING storage_key`, id).Scan(&storageKey)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO orphaned_objects (storage_key, deleted_at) VALUES ($1, NOW())`, storageKey)
		return err
	})
}

func scanDocument(row pgx.Row, doc *Document) error {
	var matterID pgtype.UUID
	err := row.Scan(&doc.ID, &doc.FirmID, &matterID, &doc.Name, &doc.ContentType, &doc.SizeBytes, &doc.Checksum, &doc.StorageKey, &doc.UploadedBy, &doc.CreatedAt)
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
		doc.MatterID = &parsed
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
