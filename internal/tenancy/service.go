package tenancy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/shared"
)

// fallbackFirmName is used when the principal's email carries no usable
// domain suffix.
const fallbackFirmName = "Unnamed Firm"

// RoleGranter assigns the default role for a freshly resolved firm. The
// rbac service satisfies this; the indirection keeps tenancy free of an
// rbac import.
type RoleGranter interface {
	GrantDefaultRole(ctx context.Context, principalID int64, firmID uuid.UUID) error
}

// Service resolves principals to firms, lazily creating the firm and
// default role on first access.
type Service struct {
	repo   Repository
	roles  RoleGranter
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, roles RoleGranter, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: roles, logger: logger}
}

// Resolve returns the firm id for an authenticated principal.
//
// The read-or-create runs in one transaction. Two concurrent first
// requests for the same brand-new principal can both take the create
// path; the later commit wins the binding. That race is accepted rather
// than serialized on a uniqueness constraint.
//
// Role assignment happens after the transaction commits so a role
// failure never rolls back firm creation; the firm binding is the
// durable side effect.
func (s *Service) Resolve(ctx context.Context, principalID int64) (uuid.UUID, error) {
	res, err := s.resolveFirm(ctx, principalID)
	if err != nil {
		return uuid.Nil, err
	}

	if res.RoleGranted {
		if err := s.roles.GrantDefaultRole(ctx, principalID, res.FirmID); err != nil {
			return uuid.Nil, fmt.Errorf("tenancy: grant default role: %w", err)
		}
	}

	return res.FirmID, nil
}

func (s *Service) resolveFirm(ctx context.Context, principalID int64) (Resolution, error) {
	var res Resolution
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		principal, err := tx.GetPrincipal(ctx, principalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// An authenticated principal must exist; a missing row is
				// a data-consistency bug, not a user error.
				return fmt.Errorf("%w: principal %d missing", httpx.ErrIntegrity, principalID)
			}
			return err
		}

		if principal.FirmID != nil {
			res.FirmID = *principal.FirmID
			res.RoleGranted = principal.RoleID == nil
			return nil
		}

		firm := Firm{
			ID:   uuid.New(),
			Name: FirmNameFromEmail(principal.Email),
		}
		if err := tx.CreateFirm(ctx, firm); err != nil {
			return fmt.Errorf("tenancy: create firm: %w", err)
		}
		if err := tx.BindPrincipal(ctx, principalID, firm.ID); err != nil {
			return fmt.Errorf("tenancy: bind principal: %w", err)
		}
		res.FirmID = firm.ID
		res.FirmCreated = true
		res.RoleGranted = true
		return nil
	})
	if err != nil {
		return Resolution{}, err
	}
	if res.FirmCreated && s.logger != nil {
		s.logger.Info("firm created", slog.String("firm_id", res.FirmID.String()), slog.Int64("principal_id", principalID))
	}
	return res, nil
}

// GetFirm returns the firm settings visible to its members.
func (s *Service) GetFirm(ctx context.Context, firmID uuid.UUID) (*Firm, error) {
	firm, err := s.repo.GetFirm(ctx, firmID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return firm, nil
}

// Rename updates the firm display name.
func (s *Service) Rename(ctx context.Context, firmID uuid.UUID, name string) (*Firm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "name", Message: "failed required validation"}}}
	}
	firm, err := s.repo.RenameFirm(ctx, firmID, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return firm, nil
}

// FirmNameFromEmail derives a firm display name from the domain-like
// suffix of the principal's email address.
func FirmNameFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return fallbackFirmName
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if domain == "" || !strings.Contains(domain, ".") {
		return fallbackFirmName
	}
	return domain
}
