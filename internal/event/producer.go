// Package event publishes and consumes the storefront's domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/exclusivos-baez/storefront-api/internal/domain"
	pkgkafka "github.com/exclusivos-baez/storefront-api/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicCheckoutCreated = "storefront.checkout.created"
	TopicDeviceReported  = "storefront.device.reported"
	TopicDropSubscribed  = "storefront.drop.subscribed"
	TopicDropReleased    = "storefront.drop.released"
)

// Aggregate type constants.
const (
	AggregateTypeCheckout = "checkout"
	AggregateTypeDevice   = "device"
	AggregateTypeDrop     = "drop"
)

// Source identifier for events originating from this service.
const SourceStorefrontAPI = "storefront-api"

// CheckoutCreatedData is the payload for a checkout.created event.
type CheckoutCreatedData struct {
	SessionID   string `json:"session_id"`
	LineCount   int    `json:"line_count"`
	TotalItems  int    `json:"total_items"`
	CheckoutURL string `json:"checkout_url"`
}

// DeviceReportedData is the payload for a device.reported event.
type DeviceReportedData struct {
	ReportID    string `json:"report_id"`
	UserID      string `json:"user_id"`
	DeviceModel string `json:"device_model"`
	Platform    string `json:"platform"`
}

// DropSubscribedData is the payload for a drop.subscribed event.
type DropSubscribedData struct {
	DropID string `json:"drop_id"`
	Slug   string `json:"slug"`
	UserID string `json:"user_id"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCheckoutCreated publishes a checkout.created event after a checkout
// URL has been handed to the buyer.
func (p *Producer) PublishCheckoutCreated(ctx context.Context, sessionID string, req *domain.CheckoutRequest, checkoutURL string) error {
	var totalItems int
	for _, l := range req.Lines {
		totalItems += l.Quantity
	}

	data := CheckoutCreatedData{
		SessionID:   sessionID,
		LineCount:   len(req.Lines),
		TotalItems:  totalItems,
		CheckoutURL: checkoutURL,
	}

	event, err := pkgkafka.NewEvent(TopicCheckoutCreated, sessionID, AggregateTypeCheckout, SourceStorefrontAPI, data)
	if err != nil {
		return fmt.Errorf("create checkout.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutCreated, event); err != nil {
		return fmt.Errorf("publish checkout.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.created event",
		slog.String("session_id", sessionID),
		slog.Int("line_count", len(req.Lines)),
	)

	return nil
}

// PublishDeviceReported publishes a device.reported event.
func (p *Producer) PublishDeviceReported(ctx context.Context, report *domain.DeviceReport) error {
	data := DeviceReportedData{
		ReportID:    report.ID,
		UserID:      report.UserID,
		DeviceModel: report.DeviceModel,
		Platform:    report.Platform,
	}

	event, err := pkgkafka.NewEvent(TopicDeviceReported, report.UserID, AggregateTypeDevice, SourceStorefrontAPI, data)
	if err != nil {
		return fmt.Errorf("create device.reported event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicDeviceReported, event); err != nil {
		return fmt.Errorf("publish device.reported event: %w", err)
	}

	p.logger.DebugContext(ctx, "published device.reported event",
		slog.String("user_id", report.UserID),
	)

	return nil
}

// PublishDropSubscribed publishes a drop.subscribed event.
func (p *Producer) PublishDropSubscribed(ctx context.Context, drop *domain.Drop, userID string) error {
	data := DropSubscribedData{
		DropID: drop.ID,
		Slug:   drop.Slug,
		UserID: userID,
	}

	event, err := pkgkafka.NewEvent(TopicDropSubscribed, drop.ID, AggregateTypeDrop, SourceStorefrontAPI, data)
	if err != nil {
		return fmt.Errorf("create drop.subscribed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicDropSubscribed, event); err != nil {
		return fmt.Errorf("publish drop.subscribed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published drop.subscribed event",
		slog.String("drop_id", drop.ID),
		slog.String("user_id", userID),
	)

	return nil
}
