package shared

import (
	"context"

	"github.com/google/uuid"
)

type sessionContextKey struct{}
type principalContextKey struct{}
type firmContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// Principal is the authenticated identity attached by the authentication
// gate. Firm and role bindings are nullable until the tenant resolver has
// run for the first time.
type Principal struct {
	ID     int64
	Email  string
	FirmID *uuid.UUID
	RoleID *int64
}

// ContextWithPrincipal returns a child context carrying the principal.
// Each gate adds its own value and never mutates what earlier gates set.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, nil when unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ContextWithFirm returns a child context carrying the resolved firm id.
// Set by the permission gate after tenant resolution succeeds.
func ContextWithFirm(ctx context.Context, firmID uuid.UUID) context.Context {
	return context.WithValue(ctx, firmContextKey{}, firmID)
}

// FirmFromContext extracts the resolved firm id.
func FirmFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(firmContextKey{}).(uuid.UUID)
	return id, ok
}
