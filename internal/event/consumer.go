package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/exclusivos-baez/storefront-api/internal/repository"
	pkgkafka "github.com/exclusivos-baez/storefront-api/pkg/kafka"
)

// ConsumerGroupID is the Kafka consumer group for the storefront.
const ConsumerGroupID = "storefront-api"

// DropReleasedData is the payload of a drop.released event.
type DropReleasedData struct {
	DropID string `json:"drop_id"`
	Slug   string `json:"slug"`
	Title  string `json:"title"`
}

// ConsumerHandler routes incoming Kafka events to the appropriate handler.
type ConsumerHandler struct {
	drops  repository.DropRepository
	sender Sender
	logger *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(drops repository.DropRepository, sender Sender, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		drops:  drops,
		sender: sender,
		logger: logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicDropReleased:
		return h.handleDropReleased(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleDropReleased fans a release announcement out to every subscriber.
// A send failure for one subscriber does not block the rest; the handler
// returns an error only when the subscriber list itself cannot be loaded,
// so the message is retried.
func (h *ConsumerHandler) handleDropReleased(ctx context.Context, event *pkgkafka.Event) error {
	var data DropReleasedData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.ErrorContext(ctx, "malformed drop.released payload",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	subscribers, err := h.drops.ListSubscribers(ctx, data.DropID)
	if err != nil {
		return fmt.Errorf("list subscribers for drop %s: %w", data.DropID, err)
	}

	var failed int
	for _, userID := range subscribers {
		alert := &Alert{
			UserID:    userID,
			DropID:    data.DropID,
			DropTitle: data.Title,
		}
		if err := h.sender.Send(ctx, alert); err != nil {
			failed++
			h.logger.ErrorContext(ctx, "send drop alert failed",
				slog.String("user_id", userID),
				slog.String("drop_id", data.DropID),
				slog.String("channel", h.sender.Name()),
				slog.String("error", err.Error()),
			)
		}
	}

	h.logger.InfoContext(ctx, "processed drop.released event",
		slog.String("drop_id", data.DropID),
		slog.Int("subscribers", len(subscribers)),
		slog.Int("failed", failed),
	)

	return nil
}

// NewConsumers creates Kafka consumers for all topics the storefront subscribes to.
func NewConsumers(brokers []string, handler *ConsumerHandler, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		TopicDropReleased,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))

	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}

		consumer := pkgkafka.NewConsumer(cfg, handler.Handle, logger)
		consumers = append(consumers, consumer)
	}

	return consumers
}
