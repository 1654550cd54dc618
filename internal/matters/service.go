package matters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/realtime"
)

// Service carries matter and case business rules. Realtime events are
// published after the repository transaction has committed, never inside
// it.
type Service struct {
	repo      Repository
	publisher *realtime.Publisher
}

// NewService constructs a Service.
func NewService(repo Repository, publisher *realtime.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Create opens a new matter for the firm. The repository allocates the
// matter number inside the insert transaction.
func (s *Service) Create(ctx context.Context, firmID uuid.UUID, req CreateMatterRequest, openedBy int64) (*Matter, error) {
	matter := &Matter{
		ID:         uuid.New(),
		FirmID:     firmID,
		Title:      req.Title,
		ClientName: req.ClientName,
		Status:     MatterStatusOpen,
		OpenedBy:   openedBy,
	}
	if err := s.repo.CreateMatter(ctx, firmID, matter); err != nil {
		return nil, fmt.Errorf("matters: create: %w", err)
	}

	s.publisher.Publish(firmID, "matter.created", map[string]any{
		"matterId": matter.ID.String(),
		"number":   matter.Number,
		"title":    matter.Title,
	}, &matter.ID)
	return matter, nil
}

// Get loads one matter.
func (s *Service) Get(ctx context.Context, firmID, id uuid.UUID) (*Matter, error) {
	matter, err := s.repo.GetMatter(ctx, firmID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return matter, nil
}

// List returns a filtered page of the firm's matters.
func (s *Service) List(ctx context.Context, firmID uuid.UUID, req ListMattersRequest) ([]Matter, int, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.repo.ListMatters(ctx, firmID, req)
}

// Update edits a matter, enforcing status transitions.
func (s *Service) Update(ctx context.Context, firmID, id uuid.UUID, req UpdateMatterRequest, actorID int64) (*Matter, error) {
	matter, err := s.repo.GetMatter(ctx, firmID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}

	next := MatterStatus(req.Status)
	if next != matter.Status && !CanTransition(matter.Status, next) {
		return nil, &httpx.ValidationError{Violations: []httpx.FieldViolation{{
			Field:   "status",
			Message: fmt.Sprintf("cannot move from %s to %s", matter.Status, next),
		}}}
	}

	matter.Title = req.Title
	matter.ClientName = req.ClientName
	matter.Status = next
	if err := s.repo.UpdateMatter(ctx, firmID, matter, actorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("matters: update: %w", err)
	}

	s.publisher.Publish(firmID, "matter.updated", map[string]any{
		"matterId": matter.ID.String(),
		"status":   string(matter.Status),
	}, &matter.ID)
	return matter, nil
}

// FileCase records a proceeding under a matter.
func (s *Service) FileCase(ctx context.Context, firmID, matterID uuid.UUID, req CreateCaseRequest, createdBy int64) (*CaseRecord, error) {
	record := &CaseRecord{
		ID:        uuid.New(),
		MatterID:  matterID,
		Title:     req.Title,
		Court:     req.Court,
		Notes:     req.Notes,
		CreatedBy: createdBy,
	}
	if err := s.repo.CreateCase(ctx, firmID, record); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("matters: file case: %w", err)
	}

	s.publisher.Publish(firmID, "case.created", map[string]any{
		"caseId":   record.ID.String(),
		"matterId": matterID.String(),
		"title":    record.Title,
	}, &matterID)
	return record, nil
}

// ListCases returns a matter's case records.
func (s *Service) ListCases(ctx context.Context, firmID, matterID uuid.UUID) ([]CaseRecord, error) {
	return s.repo.ListCases(ctx, firmID, matterID)
}
