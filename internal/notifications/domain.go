package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one entry in a user's in-app feed.
type Notification struct {
	ID          uuid.UUID
	FirmID      uuid.UUID
	RecipientID int64
	Kind        string
	Message     string
	MatterID    *uuid.UUID
	ReadAt      *time.Time
	CreatedAt   time.Time
}
