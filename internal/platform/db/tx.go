package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// firmScopeKey carries the firm id of the innermost tenant-scoped
// transaction so nested scopes can be validated.
type firmScopeKey struct{}

// FirmScopeFromContext reports the firm id of the enclosing tenant-scoped
// transaction, if any.
func FirmScopeFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(firmScopeKey{}).(uuid.UUID)
	return id, ok
}

// WithTx executes a function within a plain transaction. Reserved for
// bookkeeping that is not governed by row-level security (session audit
// rows, principal lookups during tenant resolution).
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// WithTenant executes a unit of work inside a transaction pinned to one
// firm. The firm id is written to the session-local app.current_firm
// setting before any other statement runs, so every row-level-security
// policy in the transaction evaluates against exactly that firm. The
// setting is transaction-local (set_config with is_local=true) and dies
// with the transaction on commit or rollback.
//
// Opening a tenant scope for a different firm inside an existing one is a
// programming error and panics.
func WithTenant(ctx context.Context, pool *pgxpool.Pool, firmID uuid.UUID, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if firmID == uuid.Nil {
		return fmt.Errorf("platform/db: tenant scope requires a firm id")
	}
	if outer, ok := FirmScopeFromContext(ctx); ok && outer != firmID {
		panic(fmt.Sprintf("platform/db: nested tenant scope for firm %s inside scope for firm %s", firmID, outer))
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tenant tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT set_config('app.current_firm', $1, true)`, firmID.String()); err != nil {
		return fmt.Errorf("platform/db: pin firm: %w", err)
	}

	if err := fn(context.WithValue(ctx, firmScopeKey{}, firmID), tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tenant tx: %w", err)
	}

	return nil
}
