// Package events publishes reading events for downstream consumers.
package events

import (
	"context"
	"time"

	"ipal-monitor/internal/model"
)

// TypeReadingIngested is the event type of a stored reading.
const TypeReadingIngested = "reading.ingested"

// ReadingEvent is published once per stored reading.
type ReadingEvent struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	DeviceName string             `json:"device_name"`
	OccurredAt time.Time          `json:"occurred_at"`
	Reading    *model.Reading     `json:"reading"`
	Alerts     []model.AlertDraft `json:"alerts"`
}

// Publisher delivers reading events.
type Publisher interface {
	Publish(ctx context.Context, event *ReadingEvent) error
	Close() error
}

// NopPublisher discards all events. It is used when Kafka is not configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, *ReadingEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
