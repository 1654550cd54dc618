package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// Publisher fans out events to the firm channel and, when a matter is
// involved, the matter channel. A nil Publisher or a Publisher without a
// client silently drops every event; publishing must never fail the
// request that produced the event.
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPublisher constructs a Publisher. client may be nil when the
// realtime transport is unconfigured.
func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish hands the event off to a background goroutine and returns
// immediately. Callers invoke it after their transaction has committed;
// it is never awaited on the response path, and it proceeds even when the
// requesting client has disconnected.
func (p *Publisher) Publish(firmID uuid.UUID, eventType string, payload any, matterID *uuid.UUID) {
	if p == nil || p.client == nil {
		return
	}
	ev := NewEvent(firmID, eventType, payload, matterID)
	go p.deliver(ev, matterID)
}

// PublishSync delivers on the calling goroutine. Used by tests and by
// worker jobs that already run off the request path.
func (p *Publisher) PublishSync(firmID uuid.UUID, eventType string, payload any, matterID *uuid.UUID) {
	if p == nil || p.client == nil {
		return
	}
	p.deliver(NewEvent(firmID, eventType, payload, matterID), matterID)
}

func (p *Publisher) deliver(ev Event, matterID *uuid.UUID) {
	data, err := json.Marshal(ev)
	if err != nil {
		if p.logger != nil {
			p.logger.Debug("realtime marshal", slog.Any("error", err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	firmUUID, err := uuid.Parse(ev.FirmID)
	if err != nil {
		return
	}
	if err := p.client.Publish(ctx, FirmChannel(firmUUID), data).Err(); err != nil {
		if p.logger != nil {
			p.logger.Debug("realtime publish", slog.String("channel", FirmChannel(firmUUID)), slog.Any("error", err))
		}
	}
	if matterID != nil {
		if err := p.client.Publish(ctx, MatterChannel(*matterID), data).Err(); err != nil {
			if p.logger != nil {
				p.logger.Debug("realtime publish", slog.String("channel", MatterChannel(*matterID)), slog.Any("error", err))
			}
		}
	}
}
