package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPublisher(t *testing.T) (*Publisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPublisher(client, logger), client
}

func TestPublishSyncDeliversToFirmChannel(t *testing.T) {
	pub, client := testPublisher(t)
	firmID := uuid.New()

	sub := client.Subscribe(context.Background(), FirmChannel(firmID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	pub.PublishSync(firmID, "matter.created", map[string]any{"matterId": "m-1"}, nil)

	msg, err := sub.ReceiveTimeout(context.Background(), 2*time.Second)
	require.NoError(t, err)
	payload, ok := msg.(*redis.Message)
	require.True(t, ok)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(payload.Payload), &ev))
	assert.Equal(t, "matter.created", ev.Type)
	assert.Equal(t, firmID.String(), ev.FirmID)
	assert.Empty(t, ev.MatterID)
	assert.NotEmpty(t, ev.ID)

	_, err = time.Parse(time.RFC3339, ev.CreatedAt)
	assert.NoError(t, err)
}

func TestPublishSyncDeliversToMatterChannel(t *testing.T) {
	pub, client := testPublisher(t)
	firmID := uuid.New()
	matterID := uuid.New()

	sub := client.Subscribe(context.Background(), MatterChannel(matterID))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	pub.PublishSync(firmID, "case.created", nil, &matterID)

	msg, err := sub.ReceiveTimeout(context.Background(), 2*time.Second)
	require.NoError(t, err)
	payload := msg.(*redis.Message)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(payload.Payload), &ev))
	assert.Equal(t, matterID.String(), ev.MatterID)
}

func TestPublishNilPublisherIsNoop(t *testing.T) {
	var pub *Publisher
	assert.NotPanics(t, func() {
		pub.Publish(uuid.New(), "matter.created", nil, nil)
		pub.PublishSync(uuid.New(), "matter.created", nil, nil)
	})
}

func TestPublishWithoutClientIsNoop(t *testing.T) {
	pub := NewPublisher(nil, nil)
	assert.NotPanics(t, func() {
		pub.Publish(uuid.New(), "matter.created", nil, nil)
	})
}

func TestPublishSurvivesTransportOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	pub := NewPublisher(client, slog.New(slog.NewTextHandler(io.Discard, nil)))

	mr.Close()

	assert.NotPanics(t, func() {
		pub.PublishSync(uuid.New(), "matter.created", nil, nil)
	})
}
