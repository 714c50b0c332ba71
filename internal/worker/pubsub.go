package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	prewarmJob       *PrewarmJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	PrewarmJob       *PrewarmJob
	Logger           zerolog.Logger
}

// JobMessage represents a worker job message.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Prewarm runs are slow behind the provider rate limit, allow long acks.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		prewarmJob:       cfg.PrewarmJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch job.JobType {
	case "cache_prewarm":
		err = h.handlePrewarm(ctx)
	case "health_check":
		err = h.handleHealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handlePrewarm(ctx context.Context) error {
	result := h.prewarmJob.Run(ctx)

	// Partial failure is tolerable; a mostly failed run is not.
	if result.Failed > result.Resolved {
		return fmt.Errorf("too many prewarm failures: %d/%d", result.Failed, result.TotalPoints)
	}

	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context) error {
	h.logger.Debug().Msg("running health check")

	// Resolve a single known waypoint to verify provider connectivity.
	testPoint := Point{Lat: -18.4696091, Lon: -43.4953982} // Milho Verde

	healthCheckJob := NewPrewarmJob(PrewarmJobConfig{
		Config: PrewarmConfig{
			Targets: []PrewarmTarget{
				{Name: "health-check", Priority: 1, Points: []Point{testPoint}},
			},
			Concurrency: 1,
			Timeout:     10 * time.Second,
		},
		Geocoder: h.prewarmJob.geocoder,
		Logger:   h.logger,
	})

	result := healthCheckJob.Run(ctx)

	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	h.logger.Debug().Msg("health check passed")
	return nil
}
