package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

type typedEvent interface {
	EventType() string
}

// LogPublisher implements port.EventPublisher by logging events. It is used
// when Kafka is disabled.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event type at info and its payload at debug.
func (p *LogPublisher) Publish(ctx context.Context, events ...interface{}) error {
	for _, evt := range events {
		eventType := "unknown"
		if te, ok := evt.(typedEvent); ok {
			eventType = te.EventType()
		}

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
		}

		p.logger.InfoContext(ctx, "publishing event",
			slog.String("event_type", eventType),
			slog.Int("payload_size", len(payload)),
		)
		p.logger.DebugContext(ctx, "event payload",
			slog.String("event_type", eventType),
			slog.String("payload", string(payload)),
		)
	}
	return nil
}
