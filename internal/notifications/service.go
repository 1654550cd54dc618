package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/realtime"
	"github.com/lexora-legal/lexora/jobs"
)

// Mailer enqueues transactional email. Satisfied by jobs.Client.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) error
}

// Service writes feed entries and fans the event out over email and the
// realtime channel.
type Service struct {
	repo      Repository
	publisher *realtime.Publisher
	mailer    Mailer
	logger    *slog.Logger
}

// NewService constructs a Service. mailer may be nil when the queue is
// not configured; notifications then stay in-app only.
func NewService(repo Repository, publisher *realtime.Publisher, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, mailer: mailer, logger: logger}
}

// Notify records a feed entry for the recipient, then best-effort
// enqueues an email and publishes a realtime event. Only the feed write
// can fail the call.
func (s *Service) Notify(ctx context.Context, firmID uuid.UUID, recipientID int64, kind, message string, matterID *uuid.UUID) error {
	n := &Notification{
		ID:          uuid.New(),
		FirmID:      firmID,
		RecipientID: recipientID,
		Kind:        kind,
		Message:     message,
		MatterID:    matterID,
	}
	if err := s.repo.Create(ctx, firmID, n); err != nil {
		return fmt.Errorf("notifications: create: %w", err)
	}

	if s.mailer != nil {
		if email, err := s.repo.RecipientEmail(ctx, recipientID); err == nil {
			payload := jobs.SendEmailPayload{To: email, Subject: "Lexora: " + kind, Body: message}
			if err := s.mailer.EnqueueSendEmail(ctx, payload); err != nil && s.logger != nil {
				s.logger.Warn("enqueue notification email", slog.Any("error", err))
			}
		} else if s.logger != nil {
			s.logger.Warn("resolve recipient email", slog.Int64("recipient", recipientID), slog.Any("error", err))
		}
	}

	s.publisher.Publish(firmID, "notification.created", map[string]any{
		"notificationId": n.ID.String(),
		"recipientId":    n.RecipientID,
		"kind":           n.Kind,
	}, matterID)
	return nil
}

// Feed returns the caller's notifications.
func (s *Service) Feed(ctx context.Context, firmID uuid.UUID, recipientID int64, unreadOnly bool) ([]Notification, error) {
	return s.repo.ListForRecipient(ctx, firmID, recipientID, unreadOnly)
}

// MarkRead marks one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, firmID, id uuid.UUID, recipientID int64) error {
	if err := s.repo.MarkRead(ctx, firmID, id, recipientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	return nil
}
