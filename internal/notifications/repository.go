package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the notification is not visible to the firm.
var ErrNotFound = errors.New("notifications: not found")

// Repository defines persistence for the notification feed.
type Repository interface {
	Create(ctx context.Context, firmID uuid.UUID, n *Notification) error
	ListForRecipient(ctx context.Context, firmID uuid.UUID, recipientID int64, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, firmID, id uuid.UUID, recipientID int64) error
	RecipientEmail(ctx context.Context, recipientID int64) (string, error)
}
