package approvals

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus enumerates the approval lifecycle.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// Approval is a request for sign-off on a matter or document.
type Approval struct {
	ID          uuid.UUID
	FirmID      uuid.UUID
	Module      string
	RefID       uuid.UUID
	MatterID    *uuid.UUID
	RequestedBy int64
	DecidedBy   *int64
	Status      ApprovalStatus
	Note        string
	CreatedAt   time.Time
	DecidedAt   *time.Time
}
