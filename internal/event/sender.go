package event

import (
	"context"
	"log/slog"
)

// Alert is one release notice addressed to a subscribed user.
type Alert struct {
	UserID    string
	DropID    string
	DropTitle string
}

// Sender delivers drop release alerts through a specific channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, alert *Alert) error
}

// LogSender writes alerts to the log. It stands in until a push or email
// channel is wired up and keeps the consumer pipeline exercisable locally.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-backed alert sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Name returns the channel name.
func (s *LogSender) Name() string { return "log" }

// Send logs the alert.
func (s *LogSender) Send(ctx context.Context, alert *Alert) error {
	s.logger.InfoContext(ctx, "drop release alert",
		slog.String("user_id", alert.UserID),
		slog.String("drop_id", alert.DropID),
		slog.String("drop_title", alert.DropTitle),
	)
	return nil
}
