package documents

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/lexora-legal/lexora/internal/platform/httpx"
	"github.com/lexora-legal/lexora/internal/realtime"
)

// Service handles document metadata and content. The object store may be
// nil when storage is unconfigured; metadata listing still works, content
// operations fail with Unavailable.
type Service struct {
	repo      Repository
	store     ObjectStore
	publisher *realtime.Publisher
}

// NewService constructs a Service.
func NewService(repo Repository, store ObjectStore, publisher *realtime.Publisher) *Service {
	return &Service{repo: repo, store: store, publisher: publisher}
}

// Upload stores content in object storage, then the metadata row. The
// storage write happens first so a failed upload never leaves a metadata
// row pointing at nothing.
func (s *Service) Upload(ctx context.Context, firmID uuid.UUID, matterID *uuid.UUID, name, contentType string, content io.Reader, uploadedBy int64) (*Document, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: object storage not configured", httpx.ErrUnavailable)
	}

	doc := &Document{
		ID:          uuid.New(),
		FirmID:      firmID,
		MatterID:    matterID,
		Name:        name,
		ContentType: contentType,
		UploadedBy:  uploadedBy,
	}
	doc.StorageKey = fmt.Sprintf("firms/%s/documents/%s", firmID, doc.ID)

	checksum, size, err := s.store.Put(ctx, doc.StorageKey, content, contentType)
	if err != nil {
		return nil, fmt.Errorf("documents: upload: %w", err)
	}
	doc.Checksum = checksum
	doc.SizeBytes = size

	if err := s.repo.Create(ctx, firmID, doc); err != nil {
		return nil, fmt.Errorf("documents: save metadata: %w", err)
	}

	s.publisher.Publish(firmID, "document.uploaded", map[string]any{
		"documentId": doc.ID.String(),
		"name":       doc.Name,
	}, matterID)
	return doc, nil
}

// Get loads document metadata.
func (s *Service) Get(ctx context.Context, firmID, id uuid.UUID) (*Document, error) {
	doc, err := s.repo.Get(ctx, firmID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Open returns the document metadata plus a reader over its content.
func (s *Service) Open(ctx context.Context, firmID, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, firmID, id)
	if err != nil {
		return nil, nil, err
	}
	if s.store == nil {
		return nil, nil, fmt.Errorf("%w: object storage not configured", httpx.ErrUnavailable)
	}
	body, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("documents: open: %w", err)
	}
	return doc, body, nil
}

// List returns the firm's documents, optionally scoped to a matter.
func (s *Service) List(ctx context.Context, firmID uuid.UUID, matterID *uuid.UUID) ([]Document, error) {
	return s.repo.List(ctx, firmID, matterID)
}

// Delete removes the metadata row. Content cleanup is left to the
// retention sweep job.
func (s *Service) Delete(ctx context.Context, firmID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, firmID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.ErrNotFound
		}
		return err
	}
	s.publisher.Publish(firmID, "document.deleted", map[string]any{"documentId": id.String()}, nil)
	return nil
}
