package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"ipal-monitor/internal/metrics"
)

// Publisher errors
var (
	ErrPublisherClosed = errors.New("publisher is closed")
	ErrSerializeFailed = errors.New("failed to serialize event")
)

// messageWriter is the subset of kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes reading events to a Kafka topic, keyed by device name.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	closed atomic.Bool
	logger zerolog.Logger
}

// NewKafkaPublisher creates a synchronous Kafka writer for topic.
func NewKafkaPublisher(brokers []string, topic string, writeTimeout time.Duration, logger zerolog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              1,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}

	return newKafkaPublisher(writer, topic, logger), nil
}

func newKafkaPublisher(w messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("component", "kafka_publisher").Str("topic", topic).Logger(),
	}
}

// Publish sends one event.
func (p *KafkaPublisher) Publish(ctx context.Context, event *ReadingEvent) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.DeviceName),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}

	metrics.EventsPublished.WithLabelValues("success").Inc()
	p.logger.Debug().
		Str("event_id", event.ID).
		Dur("duration", time.Since(start)).
		Msg("event published")

	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
