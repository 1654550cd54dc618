// Package realtime fans out domain events to subscribers over Redis
// pub/sub. Delivery is best effort and at most once: events are a
// convenience channel, never the system of record.
package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope published on firm and matter channels.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	FirmID    string `json:"firmId"`
	MatterID  string `json:"matterId,omitempty"`
	CreatedAt string `json:"createdAt"`
	Payload   any    `json:"payload,omitempty"`
}

// NewEvent builds an envelope for the given firm and optional matter.
func NewEvent(firmID uuid.UUID, eventType string, payload any, matterID *uuid.UUID) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		FirmID:    firmID.String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}
	if matterID != nil {
		ev.MatterID = matterID.String()
	}
	return ev
}

// FirmChannel names the per-firm channel.
func FirmChannel(firmID uuid.UUID) string {
	return "firm:" + firmID.String()
}

// MatterChannel names the per-matter channel.
func MatterChannel(matterID uuid.UUID) string {
	return "matter:" + matterID.String()
}
