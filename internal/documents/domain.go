package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document is firm-scoped file metadata. The content itself lives in
// object storage under StorageKey.
type Document struct {
	ID          uuid.UUID
	FirmID      uuid.UUID
	MatterID    *uuid.UUID
	Name        string
	ContentType string
	SizeBytes   int64
	Checksum    string
	StorageKey  string
	UploadedBy  int64
	CreatedAt   time.Time
}
