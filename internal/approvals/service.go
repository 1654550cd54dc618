package approvals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/realtime"
)

// Notifier delivers a notification to a firm member. Satisfied by
// notifications.Service; failures are logged, never propagated, since
// the decision itself has already committed.
type Notifier interface {
	Notify(ctx context.Context, firmID uuid.UUID, recipientID int64, kind, message string, matterID *uuid.UUID) error
}

// Service carries approval business rules.
type Service struct {
	repo      Repository
	publisher *realtime.Publisher
	notifier  Notifier
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, publisher *realtime.Publisher, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, notifier: notifier, logger: logger}
}

// Submit files a pending approval request.
func (s *Service) Submit(ctx context.Context, firmID uuid.UUID, module string, refID uuid.UUID, matterID *uuid.UUID, requestedBy int64, note string) (*Approval, error) {
	if module != "matter" && module != "document" {
		return nil, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "module", Message: "must be matter or document"}}}
	}
	approval := &Approval{
		ID:          uuid.New(),
		FirmID:      firmID,
		Module:      module,
		RefID:       refID,
		MatterID:    matterID,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		Note:        note,
	}
	if err := s.repo.Create(ctx, firmID, approval); err != nil {
		return nil, fmt.Errorf("approvals: submit: %w", err)
	}

	s.publisher.Publish(firmID, "approval.submitted", map[string]any{
		"approvalId": approval.ID.String(),
		"module":     approval.Module,
		"refId":      approval.RefID.String(),
	}, matterID)
	return approval, nil
}

// Get loads one approval.
func (s *Service) Get(ctx context.Context, firmID, id uuid.UUID) (*Approval, error) {
	approval, err := s.repo.Get(ctx, firmID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return approval, nil
}

// List returns the firm's approvals.
func (s *Service) List(ctx context.Context, firmID uuid.UUID, status *ApprovalStatus) ([]Approval, error) {
	return s.repo.List(ctx, firmID, status)
}

// Decide approves or rejects a pending request and notifies the
// requester.
func (s *Service) Decide(ctx context.Context, firmID, id uuid.UUID, decidedBy int64, approve bool, note string) (*Approval, error) {
	status := StatusRejected
	if approve {
		status = StatusApproved
	}
	approval, err := s.repo.Decide(ctx, firmID, id, decidedBy, status, note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, httpx.ErrNotFound
		case errors.Is(err, ErrAlreadyDecided):
			return nil, fmt.Errorf("%w: approval already decided", httpx.ErrConflict)
		}
		return nil, fmt.Errorf("approvals: decide: %w", err)
	}

	s.publisher.Publish(firmID, "approval.decided", map[string]any{
		"approvalId": approval.ID.String(),
		"status":     string(approval.Status),
	}, approval.MatterID)

	if s.notifier != nil {
		message := fmt.Sprintf("Your %s approval request was %s", approval.Module, string(approval.Status))
		if err := s.notifier.Notify(ctx, firmID, approval.RequestedBy, "approval."+string(approval.Status), message, approval.MatterID); err != nil && s.logger != nil {
			s.logger.Warn("notify approval decision", slog.Any("error", err))
		}
	}
	return approval, nil
}
