package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/jobs"
)

type mockRepo struct {
	items    map[uuid.UUID]*Notification
	emails   map[int64]string
	emailErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[uuid.UUID]*Notification{}, emails: map[int64]string{}}
}

func (m *mockRepo) Create(_ context.Context, firmID uuid.UUID, n *Notification) error {
	cp := *n
	cp.FirmID = firmID
	cp.CreatedAt = time.Now()
	m.items[n.ID] = &cp
	return nil
}

func (m *mockRepo) ListForRecipient(_ context.Context, firmID uuid.UUID, recipientID int64, unreadOnly bool) ([]Notification, error) {
	var out []Notification
	for _, n := range m.items {
		if n.FirmID != firmID || n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *mockRepo) MarkRead(_ context.Context, firmID, id uuid.UUID, recipientID int64) error {
	n, ok := m.items[id]
	if !ok || n.FirmID != firmID || n.RecipientID != recipientID || n.ReadAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	n.ReadAt = &now
	return nil
}

func (m *mockRepo) RecipientEmail(_ context.Context, recipientID int64) (string, error) {
	if m.emailErr != nil {
		return "", m.emailErr
	}
	email, ok := m.emails[recipientID]
	if !ok {
		return "", ErrNotFound
	}
	return email, nil
}

type recordingMailer struct {
	sent []jobs.SendEmailPayload
	err  error
}

func (m *recordingMailer) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, payload)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifyWritesFeedAndEmails(t *testing.T) {
	repo := newMockRepo()
	repo.emails[7] = "ada@windmill.law"
	mailer := &recordingMailer{}
	svc := NewService(repo, nil, mailer, testLogger())
	firmID := uuid.New()

	err := svc.Notify(context.Background(), firmID, 7, "approval.APPROVED", "Your matter approval request was APPROVED", nil)
	require.NoError(t, err)

	feed, err := svc.Feed(context.Background(), firmID, 7, false)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "approval.APPROVED", feed[0].Kind)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ada@windmill.law", mailer.sent[0].To)
	assert.Equal(t, "Lexora: approval.APPROVED", mailer.sent[0].Subject)
}

func TestNotifyWithoutMailerStaysInApp(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil, testLogger())
	firmID := uuid.New()

	err := svc.Notify(context.Background(), firmID, 7, "deadline.soon", "Filing due tomorrow", nil)
	require.NoError(t, err)

	feed, err := svc.Feed(context.Background(), firmID, 7, true)
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}

func TestNotifySurvivesMailerFailure(t *testing.T) {
	repo := newMockRepo()
	repo.emails[7] = "ada@windmill.law"
	mailer := &recordingMailer{err: errors.New("redis down")}
	svc := NewService(repo, nil, mailer, testLogger())

	err := svc.Notify(context.Background(), uuid.New(), 7, "deadline.soon", "Filing due tomorrow", nil)
	assert.NoError(t, err)
}

func TestNotifySurvivesUnknownRecipientEmail(t *testing.T) {
	repo := newMockRepo()
	mailer := &recordingMailer{}
	svc := NewService(repo, nil, mailer, testLogger())

	err := svc.Notify(context.Background(), uuid.New(), 99, "deadline.soon", "Filing due tomorrow", nil)
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestMarkReadIsRecipientScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil, testLogger())
	firmID := uuid.New()

	require.NoError(t, svc.Notify(context.Background(), firmID, 7, "deadline.soon", "Filing due tomorrow", nil))
	feed, err := svc.Feed(context.Background(), firmID, 7, false)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	err = svc.MarkRead(context.Background(), firmID, feed[0].ID, 8)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), firmID, feed[0].ID, 7))

	unread, err := svc.Feed(context.Background(), firmID, 7, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// Marking twice is a not-found, the row is no longer unread.
	err = svc.MarkRead(context.Background(), firmID, feed[0].ID, 7)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
