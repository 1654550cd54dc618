package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/realtime"
)

// Service carries billing business rules.
type Service struct {
	repo      Repository
	publisher *realtime.Publisher
}

// NewService constructs a Service.
func NewService(repo Repository, publisher *realtime.Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// RecordTime files a time entry against a matter.
func (s *Service) RecordTime(ctx context.Context, firmID, matterID uuid.UUID, userID int64, description string, minutes int, rateCents int64, entryDate time.Time) (*TimeEntry, error) {
	if minutes <= 0 {
		return nil, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "minutes", Message: "must be positive"}}}
	}
	if rateCents < 0 {
		return nil, &httpx.ValidationError{Violations: []httpx.FieldViolation{{Field: "rateCents", Message: "must not be negative"}}}
	}
	entry := &TimeEntry{
		ID:          uuid.New(),
		FirmID:      firmID,
		MatterID:    matterID,
		UserID:      userID,
		Description: description,
		Minutes:     minutes,
		RateCents:   rateCents,
		EntryDate:   entryDate,
	}
	if err := s.repo.CreateEntry(ctx, firmID, entry); err != nil {
		return nil, fmt.Errorf("billing: record time: %w", err)
	}

	s.publisher.Publish(firmID, "billing.entry.created", map[string]any{
		"entryId":  entry.ID.String(),
		"matterId": matterID.String(),
		"minutes":  minutes,
	}, &matterID)
	return entry, nil
}

// Entries lists a matter's time entries.
func (s *Service) Entries(ctx context.Context, firmID, matterID uuid.UUID) ([]TimeEntry, error) {
	return s.repo.ListEntries(ctx, firmID, matterID)
}

// RemoveEntry deletes a time entry.
func (s *Service) RemoveEntry(ctx context.Context, firmID, id uuid.UUID) error {
	if err := s.repo.DeleteEntry(ctx, firmID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	return nil
}

// InvoiceDraftFor prices a matter's recorded time into a draft invoice.
// Nothing is persisted; the draft is recomputed on every call.
func (s *Service) InvoiceDraftFor(ctx context.Context, firmID, matterID uuid.UUID) (*InvoiceDraft, error) {
	entries, err := s.repo.ListEntries(ctx, firmID, matterID)
	if err != nil {
		return nil, err
	}
	draft := BuildInvoiceDraft(matterID, entries)
	return &draft, nil
}
