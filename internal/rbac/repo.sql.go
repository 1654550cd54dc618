package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexora-legal/lexora/internal/platform/db"
	"github.com/lexora-legal/lexora/internal/shared"
)

// Repository defines persistence operations for roles and assignments.
type Repository interface {
	PrincipalPermissions(ctx context.Context, principalID int64, firmID uuid.UUID) ([]string, error)
	EnsureRole(ctx context.Context, firmID uuid.UUID, name string, permissions []string) (int64, error)
	AssignRoleIfUnset(ctx context.Context, principalID, roleID int64) error
	ListRoles(ctx context.Context, firmID uuid.UUID) ([]Role, error)
	CreateRole(ctx context.Context, firmID uuid.UUID, name string, permissions []string) (Role, error)
	SetRolePermissions(ctx context.Context, firmID uuid.UUID, roleID int64, permissions []string) (Role, error)
	AssignRole(ctx context.Context, firmID uuid.UUID, principalID, roleID int64) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// PrincipalPermissions loads the permission strings of the principal's
// role, verifying the role belongs to the given firm. Returns
// shared.ErrNotFound when the principal has no role in that firm.
func (r *PGRepository) PrincipalPermissions(ctx context.Context, principalID int64, firmID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rp.permission
		FROM users u
		JOIN roles ro ON ro.id = u.role_id AND ro.firm_id = $2
		JOIN role_permissions rp ON rp.role_id = ro.id
		WHERE u.id = $1
		ORDER BY rp.permission`, principalID, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, `SELECT true FROM users u JOIN roles ro ON ro.id = u.role_id AND ro.firm_id = $2 WHERE u.id = $1`, principalID, firmID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
	}
	return perms, nil
}

// EnsureRole returns the id of the named role, creating it with the given
// bundle when absent.
func (r *PGRepository) EnsureRole(ctx context.Context, firmID uuid.UUID, name string, permissions []string) (int64, error) {
	var roleID int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM roles WHERE firm_id = $1 AND name = $2`, firmID, name).Scan(&roleID)
	if err == nil {
		return roleID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO roles (firm_id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW()) RETURNING id`, firmID, name).Scan(&roleID); err != nil {
			return err
		}
		return insertPermissions(ctx, tx, roleID, permissions)
	})
	if err != nil {
		return 0, err
	}
	return roleID, nil
}

// AssignRoleIfUnset binds the role only when the principal has none yet.
func (r *PGRepository) AssignRoleIfUnset(ctx context.Context, principalID, roleID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1 AND role_id IS NULL`, principalID, roleID)
	return err
}

// ListRoles returns the firm's roles with their bundles.
func (r *PGRepository) ListRoles(ctx context.Context, firmID uuid.UUID) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ro.id, ro.firm_id, ro.name, ro.created_at, ro.updated_at,
		       COALESCE(array_agg(rp.permission ORDER BY rp.permission) FILTER (WHERE rp.permission IS NOT NULL), '{}')
		FROM roles ro
		LEFT JOIN role_permissions rp ON rp.role_id = ro.id
		WHERE ro.firm_id = $1
		GROUP BY ro.id
		ORDER BY ro.name`, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// CreateRole inserts a role and its bundle in one transaction.
func (r *PGRepository) CreateRole(ctx context.Context, firmID uuid.UUID, name string, permissions []string) (Role, error) {
	var role Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var createdAt, updatedAt pgtype.Timestamptz
		if err := tx.QueryRow(ctx, `INSERT INTO roles (firm_id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW()) RETURNING id, firm_id, name, created_at, updated_at`, firmID, name).
			Scan(&role.ID, &role.FirmID, &role.Name, &createdAt, &updatedAt); err != nil {
			return err
		}
		role.CreatedAt = createdAt.Time
		role.UpdatedAt = updatedAt.Time
		role.Permissions = permissions
		return insertPermissions(ctx, tx, role.ID, permissions)
	})
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// SetRolePermissions replaces the bundle of a role owned by the firm.
func (r *PGRepository) SetRolePermissions(ctx context.Context, firmID uuid.UUID, roleID int64, permissions []string) (Role, error) {
	var role Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var createdAt, updatedAt pgtype.Timestamptz
		err := tx.QueryRow(ctx, `UPDATE roles SET updated_at = NOW() WHERE id = $1 AND firm_id = $2 RETURNING id, firm_id, name, created_at, updated_at`, roleID, firmID).
			Scan(&role.ID, &role.FirmID, &role.Name, &createdAt, &updatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		role.CreatedAt = createdAt.Time
		role.UpdatedAt = updatedAt.Time
		role.Permissions = permissions
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		return insertPermissions(ctx, tx, roleID, permissions)
	})
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// AssignRole binds a principal to a role, verifying firm ownership.
func (r *PGRepository) AssignRole(ctx context.Context, firmID uuid.UUID, principalID, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role_id = $3, updated_at = NOW()
		WHERE id = $2 AND firm_id = $1
		  AND EXISTS (SELECT 1 FROM roles WHERE id = $3 AND firm_id = $1)`, firmID, principalID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertPermissions(ctx context.Context, tx pgx.Tx, roleID int64, permissions []string) error {
	for _, p := range permissions {
		if _, err := tx.Exec(ctx, `INSERT INTO role_permissions (role_id, permission) VALUES ($1, $2) ON CONFLICT DO NOTHING`, roleID, p); err != nil {
			return err
		}
	}
	return nil
}

func scanRole(rows pgx.Rows) (Role, error) {
	var role Role
	var createdAt, updatedAt pgtype.Timestamptz
	if err := rows.Scan(&role.ID, &role.FirmID, &role.Name, &createdAt, &updatedAt, &role.Permissions); err != nil {
		return Role{}, err
	}
	role.CreatedAt = createdAt.Time
	role.UpdatedAt = updatedAt.Time
	return role, nil
}

var _ Repository = (*PGRepository)(nil)
