package drafting

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus enumerates the draft-generation lifecycle.
type DraftStatus string

const (
	StatusQueued    DraftStatus = "QUEUED"
	StatusRunning   DraftStatus = "RUNNING"
	StatusCompleted DraftStatus = "COMPLETED"
	StatusFailed    DraftStatus = "FAILED"
)

// DraftRequest is a queued request for an AI-generated document draft.
type DraftRequest struct {
	ID          uuid.UUID
	FirmID      uuid.UUID
	MatterID    *uuid.UUID
	RequestedBy int64
	Prompt      string
	Result      string
	Status      DraftStatus
	FailReason  string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
