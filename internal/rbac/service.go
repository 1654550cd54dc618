package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/shared"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service computes effective permissions and manages firm roles. The
// roles and users tables are authorization metadata and sit outside
// row-level security; reads here never open a tenant-scoped transaction,
// which keeps gate rejections cheap.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EffectivePermissions returns the permission bundle of the principal's
// role within the firm. Computed fresh on every call; caching a bundle
// across requests would let a revoked role keep authorizing.
func (s *Service) EffectivePermissions(ctx context.Context, principalID int64, firmID uuid.UUID) ([]string, error) {
	perms, err := s.repo.PrincipalPermissions(ctx, principalID, firmID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// No role assigned: empty set, every check fails closed.
			return nil, nil
		}
		return nil, err
	}
	return perms, nil
}

// HasPermission reports exact membership of required in granted. No
// hierarchy, no prefix or wildcard semantics.
func HasPermission(granted []string, required string) bool {
	for _, p := range granted {
		if p == required {
			return true
		}
	}
	return false
}

// GrantDefaultRole assigns the firm's default role to the principal,
// creating the role on first use. The principal's existing role, if any,
// is left untouched.
func (s *Service) GrantDefaultRole(ctx context.Context, principalID int64, firmID uuid.UUID) error {
	roleID, err := s.repo.EnsureRole(ctx, firmID, DefaultRoleName, shared.DefaultRoleScopes())
	if err != nil {
		return fmt.Errorf("rbac: ensure default role: %w", err)
	}
	if err := s.repo.AssignRoleIfUnset(ctx, principalID, roleID); err != nil {
		return fmt.Errorf("rbac: assign default role: %w", err)
	}
	return nil
}

// ListRoles returns the firm's roles ordered by name.
func (s *Service) ListRoles(ctx context.Context, firmID uuid.UUID) ([]Role, error) {
	return s.repo.ListRoles(ctx, firmID)
}

// CreateRole inserts a new role with the given permission bundle.
// Unknown permission strings are rejected.
func (s *Service) CreateRole(ctx context.Context, firmID uuid.UUID, name string, permissions []string) (Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return Role{}, &httpx.ValidationError{Violations: []httpx.FieldViolation{{
			Field:   "name",
			Message: "must not be empty",
		}}}
	}
	normalized, err := normalizePermissions(permissions)
	if err != nil {
		return Role{}, err
	}
	return s.repo.CreateRole(ctx, firmID, name, normalized)
}

// SetRolePermissions replaces the permission bundle of a role.
func (s *Service) SetRolePermissions(ctx context.Context, firmID uuid.UUID, roleID int64, permissions []string) (Role, error) {
	normalized, err := normalizePermissions(permissions)
	if err != nil {
		return Role{}, err
	}
	return s.repo.SetRolePermissions(ctx, firmID, roleID, normalized)
}

// AssignRole binds a principal to a role within the firm, replacing any
// previous role.
func (s *Service) AssignRole(ctx context.Context, firmID uuid.UUID, principalID, roleID int64) error {
	return s.repo.AssignRole(ctx, firmID, principalID, roleID)
}

func normalizePermissions(perms []string) ([]string, error) {
	known := make(map[string]struct{})
	for _, p := range shared.AllPermissions() {
		known[p] = struct{}{}
	}
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, ok := known[p]; !ok {
			return nil, &httpx.ValidationError{Violations: []httpx.FieldViolation{{
				Field:   "permissions",
				Message: fmt.Sprintf("unknown permission %q", p),
			}}}
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized, nil
}
