// Package announce forwards guide announcements to external consumers.
package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/rotaguia/rotaguia/internal/guide"
)

// PubSubConfig holds configuration for the Pub/Sub forwarder.
type PubSubConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// PubSubForwarder publishes address announcements to a Pub/Sub topic so
// downstream consumers (push notification senders, analytics) can react
// without being in-process subscribers.
type PubSubForwarder struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// announcementMessage is the published payload.
type announcementMessage struct {
	DeviceID string `json:"device_id"`
	Field    string `json:"field"`
	Text     string `json:"text"`
	Address  string `json:"address"`
	Time     string `json:"time"`
}

// NewPubSubForwarder creates a forwarder publishing to the configured topic.
func NewPubSubForwarder(ctx context.Context, cfg PubSubConfig) (*PubSubForwarder, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubForwarder{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// Handle is a guide event subscriber. Only address events carrying an
// announcement are forwarded; publish failures are logged, never propagated
// into the fan-out.
func (f *PubSubForwarder) Handle(e guide.Event) {
	if e.Tag != guide.EventAddressUpdated || e.Announcement == nil {
		return
	}

	msg := announcementMessage{
		DeviceID: e.DeviceID,
		Field:    string(e.Announcement.Field),
		Text:     e.Announcement.Text,
		Address:  e.Address.String(),
		Time:     e.Time.UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to marshal announcement")
		return
	}

	result := f.publisher.Publish(context.Background(), &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"device_id": e.DeviceID,
			"field":     string(e.Announcement.Field),
		},
	})

	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			f.logger.Error().Err(err).
				Str("topic", f.topicName).
				Str("device_id", msg.DeviceID).
				Msg("failed to publish announcement")
		}
	}()
}

// Close stops the publisher and closes the client.
func (f *PubSubForwarder) Close() error {
	f.publisher.Stop()
	return f.client.Close()
}
