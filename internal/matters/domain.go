package matters

import (
	"time"

	"github.com/google/uuid"
)

// MatterStatus enumerates the matter lifecycle.
type MatterStatus string

const (
	MatterStatusOpen     MatterStatus = "OPEN"
	MatterStatusClosed   MatterStatus = "CLOSED"
	MatterStatusArchived MatterStatus = "ARCHIVED"
)

var validTransitions = map[MatterStatus][]MatterStatus{
	MatterStatusOpen:   {MatterStatusClosed},
	MatterStatusClosed: {MatterStatusOpen, MatterStatusArchived},
}

// CanTransition reports whether a matter may move between two statuses.
func CanTransition(from, to MatterStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Matter is a legal engagement within one firm.
type Matter struct {
	ID         uuid.UUID
	FirmID     uuid.UUID
	Number     string
	Title      string
	ClientName string
	Status     MatterStatus
	OpenedBy   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CaseRecord is a court or proceeding record filed under a matter.
type CaseRecord struct {
	ID        uuid.UUID
	MatterID  uuid.UUID
	Title     string
	Court     string
	Notes     string
	CreatedBy int64
	CreatedAt time.Time
}
