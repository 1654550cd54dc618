package approvals

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
)

type mockRepo struct {
	approvals map[uuid.UUID]*Approval
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{approvals: map[uuid.UUID]*Approval{}}
}

func (m *mockRepo) Create(_ context.Context, firmID uuid.UUID, approval *Approval) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *approval
	cp.FirmID = firmID
	cp.CreatedAt = time.Now()
	m.approvals[approval.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, firmID, id uuid.UUID) (*Approval, error) {
	approval, ok := m.approvals[id]
	if !ok || approval.FirmID != firmID {
		return nil, ErrNotFound
	}
	cp := *approval
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, firmID uuid.UUID, status *ApprovalStatus) ([]Approval, error) {
	var out []Approval
	for _, approval := range m.approvals {
		if approval.FirmID != firmID {
			continue
		}
		if status != nil && approval.Status != *status {
			continue
		}
		out = append(out, *approval)
	}
	return out, nil
}

func (m *mockRepo) Decide(_ context.Context, firmID, id uuid.UUID, decidedBy int64, status ApprovalStatus, note string) (*Approval, error) {
	approval, ok := m.approvals[id]
	if !ok || approval.FirmID != firmID {
		return nil, ErrNotFound
	}
	if approval.Status != StatusPending {
		return nil, ErrAlreadyDecided
	}
	now := time.Now()
	approval.Status = status
	approval.DecidedBy = &decidedBy
	approval.DecidedAt = &now
	approval.Note = note
	cp := *approval
	return &cp, nil
}

type recordingNotifier struct {
	calls []notifyCall
	err   error
}

type notifyCall struct {
	firmID      uuid.UUID
	recipientID int64
	kind        string
	message     string
}

func (n *recordingNotifier) Notify(_ context.Context, firmID uuid.UUID, recipientID int64, kind, message string, _ *uuid.UUID) error {
	n.calls = append(n.calls, notifyCall{firmID: firmID, recipientID: recipientID, kind: kind, message: message})
	return n.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitRejectsUnknownModule(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil, testLogger())

	_, err := svc.Submit(context.Background(), uuid.New(), "invoice", uuid.New(), nil, 7, "")

	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "module", verr.Violations[0].Field)
}

func TestSubmitCreatesPending(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil, testLogger())
	firmID := uuid.New()
	refID := uuid.New()

	approval, err := svc.Submit(context.Background(), firmID, "matter", refID, nil, 7, "please review")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, approval.Status)
	assert.Equal(t, refID, approval.RefID)
	assert.Equal(t, int64(7), approval.RequestedBy)
	assert.Contains(t, repo.approvals, approval.ID)
}

func TestDecideApprovesAndNotifiesRequester(t *testing.T) {
	repo := newMockRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, nil, notifier, testLogger())
	firmID := uuid.New()

	approval, err := svc.Submit(context.Background(), firmID, "document", uuid.New(), nil, 7, "")
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), firmID, approval.ID, 9, true, "looks good")
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, int64(9), *decided.DecidedBy)
	require.NotNil(t, decided.DecidedAt)

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	assert.Equal(t, firmID, call.firmID)
	assert.Equal(t, int64(7), call.recipientID)
	assert.Equal(t, "approval.APPROVED", call.kind)
	assert.Contains(t, call.message, "document")
	assert.Contains(t, call.message, "APPROVED")
}

func TestDecideReject(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil, testLogger())
	firmID := uuid.New()

	approval, err := svc.Submit(context.Background(), firmID, "matter", uuid.New(), nil, 7, "")
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), firmID, approval.ID, 9, false, "missing exhibits")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, decided.Status)
}

func TestDecideTwiceIsConflict(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil, testLogger())
	firmID := uuid.New()

	approval, err := svc.Submit(context.Background(), firmID, "matter", uuid.New(), nil, 7, "")
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), firmID, approval.ID, 9, true, "")
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), firmID, approval.ID, 9, false, "")
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDecideUnknownIsNotFound(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil, testLogger())

	_, err := svc.Decide(context.Background(), uuid.New(), uuid.New(), 9, true, "")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDecideSurvivesNotifierFailure(t *testing.T) {
	repo := newMockRepo()
	notifier := &recordingNotifier{err: errors.New("mail down")}
	svc := NewService(repo, nil, notifier, testLogger())
	firmID := uuid.New()

	approval, err := svc.Submit(context.Background(), firmID, "matter", uuid.New(), nil, 7, "")
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), firmID, approval.ID, 9, true, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, decided.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil, testLogger())
	firmID := uuid.New()

	first, err := svc.Submit(context.Background(), firmID, "matter", uuid.New(), nil, 7, "")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), firmID, "document", uuid.New(), nil, 7, "")
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), firmID, first.ID, 9, true, "")
	require.NoError(t, err)

	pending := StatusPending
	list, err := svc.List(context.Background(), firmID, &pending)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
