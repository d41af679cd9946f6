package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// domainEvent is satisfied by every type in internal/domain/event.
type domainEvent interface {
	EventType() string
	AggregateID() uuid.UUID
}

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config holds Kafka producer parameters.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// Publisher implements port.EventPublisher using a kafka-go writer.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a Publisher writing to cfg.Topic.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, cfg.Topic, logger)
}

func newPublisher(w messageWriter, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{writer: w, topic: topic, logger: logger}
}

// Publish sends domain events to Kafka keyed by aggregate ID, so every event
// of one model lands on the same partition.
func (p *Publisher) Publish(ctx context.Context, events ...interface{}) error {
	messages := make([]kafkago.Message, 0, len(events))
	for _, evt := range events {
		de, ok := evt.(domainEvent)
		if !ok {
			return fmt.Errorf("unsupported event type %T", evt)
		}
		eventType := de.EventType()

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", eventType),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(payload)),
		)

		messages = append(messages, kafkago.Message{
			Key:   []byte(de.AggregateID().String()),
			Value: payload,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(eventType)},
				{Key: "content-type", Value: []byte("application/json")},
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
