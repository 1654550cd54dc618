package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/shared"
)

// Resolver resolves a principal to its firm, lazily creating the firm on
// first access. Satisfied by tenancy.Service.
type Resolver interface {
	Resolve(ctx context.Context, principalID int64) (uuid.UUID, error)
}

// DenialRecorder counts permission denials. Satisfied by
// observability.Metrics.
type DenialRecorder interface {
	RecordPermissionDenial(permission string)
}

// Middleware is the permission gate. It composes after the
// authentication gate: the principal is already in context, the gate
// resolves the firm, evaluates the required permission, and either
// rejects with 403 or passes the resolved firm id down in context.
type Middleware struct {
	Service  *Service
	Resolver Resolver
	Logger   *slog.Logger
	Metrics  DenialRecorder
}

// Require guards a handler with one required permission. Checking always
// happens against the fully resolved firm, never a partially initialized
// one.
func (m Middleware) Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, m.Logger, httpx.ErrUnauthenticated)
				return
			}

			firmID, err := m.Resolver.Resolve(r.Context(), principal.ID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("resolve firm", slog.Int64("principal_id", principal.ID), slog.Any("error", err))
				}
				httpx.RespondError(w, m.Logger, err)
				return
			}

			granted, err := m.Service.EffectivePermissions(r.Context(), principal.ID, firmID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("effective permissions", slog.Any("error", err))
				}
				httpx.RespondError(w, m.Logger, err)
				return
			}
			if !HasPermission(granted, perm) {
				if m.Metrics != nil {
					m.Metrics.RecordPermissionDenial(perm)
				}
				httpx.Error(w, http.StatusForbidden, httpx.ErrorBody{
					Error: "Missing permission: " + perm,
					Code:  httpx.CodeForbidden,
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(shared.ContextWithFirm(r.Context(), firmID)))
		})
	}
}
