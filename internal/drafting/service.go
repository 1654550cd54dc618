package drafting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/jobs"
)

// Enqueuer hands generation work to the queue. Satisfied by jobs.Client.
type Enqueuer interface {
	EnqueueDraftGenerate(ctx context.Context, payload jobs.DraftGeneratePayload) error
}

// Service accepts draft requests and exposes their progress. Generation
// itself happens on the worker, see Job.
type Service struct {
	repo     Repository
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger}
}

// Request queues a draft for generation. The request row commits before
// the task is enqueued; if enqueueing fails the row stays QUEUED and the
// caller sees an unavailable error.
func (s *Service) Request(ctx context.Context, firmID uuid.UUID, matterID *uuid.UUID, requestedBy int64, prompt string) (*DraftRequest, error) {
	if s.enqueuer == nil {
		return nil, fmt.Errorf("%w: drafting queue not configured", httpx.ErrUnavailable)
	}
	draft := &DraftRequest{
		ID:          uuid.New(),
		FirmID:      firmID,
		MatterID:    matterID,
		RequestedBy: requestedBy,
		Prompt:      prompt,
		Status:      StatusQueued,
	}
	if err := s.repo.Create(ctx, firmID, draft); err != nil {
		return nil, fmt.Errorf("drafting: create request: %w", err)
	}

	payload := jobs.DraftGeneratePayload{FirmID: firmID.String(), DraftID: draft.ID.String()}
	if err := s.enqueuer.EnqueueDraftGenerate(ctx, payload); err != nil {
		if s.logger != nil {
			s.logger.Error("enqueue draft generation", slog.String("draft", draft.ID.String()), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w: drafting queue unreachable", httpx.ErrUnavailable)
	}
	return draft, nil
}

// Get loads one draft request.
func (s *Service) Get(ctx context.Context, firmID, id uuid.UUID) (*DraftRequest, error) {
	draft, err := s.repo.Get(ctx, firmID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return draft, nil
}

// List returns the firm's draft requests.
func (s *Service) List(ctx context.Context, firmID uuid.UUID) ([]DraftRequest, error) {
	return s.repo.List(ctx, firmID)
}
