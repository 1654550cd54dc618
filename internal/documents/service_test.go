package documents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
)

type mockRepo struct {
	docs    map[uuid.UUID]*Document
	failure error
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: map[uuid.UUID]*Document{}}
}

func (m *mockRepo) Create(_ context.Context, firmID uuid.UUID, doc *Document) error {
	if m.failure != nil {
		return m.failure
	}
	cp := *doc
	cp.FirmID = firmID
	m.docs[doc.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, firmID, id uuid.UUID) (*Document, error) {
	doc, ok := m.docs[id]
	if !ok || doc.FirmID != firmID {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, firmID uuid.UUID, matterID *uuid.UUID) ([]Document, error) {
	var out []Document
	for _, doc := range m.docs {
		if doc.FirmID != firmID {
			continue
		}
		if matterID != nil && (doc.MatterID == nil || *doc.MatterID != *matterID) {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, firmID, id uuid.UUID) error {
	doc, ok := m.docs[id]
	if !ok || doc.FirmID != firmID {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// memStore keeps object content in a map and hashes like the real store.
type memStore struct {
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key string, content io.Reader, _ string) (string, int64, error) {
	if m.putErr != nil {
		return "", 0, m.putErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", 0, err
	}
	m.objects[key] = data
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), int64(len(data)), nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("memstore: no such key")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func TestUploadWithoutStoreIsUnavailable(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)

	_, err := svc.Upload(context.Background(), uuid.New(), nil, "retainer.pdf", "application/pdf", strings.NewReader("x"), 7)
	assert.ErrorIs(t, err, httpx.ErrUnavailable)
}

func TestUploadStoresContentAndMetadata(t *testing.T) {
	repo := newMockRepo()
	store := newMemStore()
	svc := NewService(repo, store, nil)
	firmID := uuid.New()
	matterID := uuid.New()

	body := "engagement letter body"
	doc, err := svc.Upload(context.Background(), firmID, &matterID, "engagement.pdf", "application/pdf", strings.NewReader(body), 7)
	require.NoError(t, err)

	assert.Equal(t, "firms/"+firmID.String()+"/documents/"+doc.ID.String(), doc.StorageKey)
	assert.Equal(t, int64(len(body)), doc.SizeBytes)

	wantHash := sha256.Sum256([]byte(body))
	assert.Equal(t, hex.EncodeToString(wantHash[:]), doc.Checksum)

	assert.Equal(t, []byte(body), store.objects[doc.StorageKey])
	require.Contains(t, repo.docs, doc.ID)
	assert.Equal(t, int64(7), repo.docs[doc.ID].UploadedBy)
}

func TestUploadStorageFailureLeavesNoMetadata(t *testing.T) {
	repo := newMockRepo()
	store := newMemStore()
	store.putErr = errors.New("bucket gone")
	svc := NewService(repo, store, nil)

	_, err := svc.Upload(context.Background(), uuid.New(), nil, "a.txt", "text/plain", strings.NewReader("x"), 7)
	require.Error(t, err)
	assert.Empty(t, repo.docs)
}

func TestOpenRoundTrip(t *testing.T) {
	repo := newMockRepo()
	store := newMemStore()
	svc := NewService(repo, store, nil)
	firmID := uuid.New()

	doc, err := svc.Upload(context.Background(), firmID, nil, "notes.txt", "text/plain", strings.NewReader("privileged notes"), 7)
	require.NoError(t, err)

	got, body, err := svc.Open(context.Background(), firmID, doc.ID)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "privileged notes", string(data))
	assert.Equal(t, doc.Checksum, got.Checksum)
}

func TestOpenIsFirmScoped(t *testing.T) {
	repo := newMockRepo()
	store := newMemStore()
	svc := NewService(repo, store, nil)

	doc, err := svc.Upload(context.Background(), uuid.New(), nil, "notes.txt", "text/plain", strings.NewReader("x"), 7)
	require.NoError(t, err)

	_, _, err = svc.Open(context.Background(), uuid.New(), doc.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteUnknownIsNotFound(t *testing.T) {
	svc := NewService(newMockRepo(), newMemStore(), nil)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteRemovesMetadataOnly(t *testing.T) {
	repo := newMockRepo()
	store := newMemStore()
	svc := NewService(repo, store, nil)
	firmID := uuid.New()

	doc, err := svc.Upload(context.Background(), firmID, nil, "old.pdf", "application/pdf", strings.NewReader("x"), 7)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), firmID, doc.ID))
	assert.NotContains(t, repo.docs, doc.ID)
	// Content stays until the retention sweep collects the orphaned key.
	assert.Contains(t, store.objects, doc.StorageKey)
}

func TestListFiltersByMatter(t *testing.T) {
	repo := newMockRepo()
	store := newMemStore()
	svc := NewService(repo, store, nil)
	firmID := uuid.New()
	matterID := uuid.New()

	_, err := svc.Upload(context.Background(), firmID, &matterID, "a.pdf", "application/pdf", strings.NewReader("a"), 7)
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), firmID, nil, "b.pdf", "application/pdf", strings.NewReader("b"), 7)
	require.NoError(t, err)

	scoped, err := svc.List(context.Background(), firmID, &matterID)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	all, err := svc.List(context.Background(), firmID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
