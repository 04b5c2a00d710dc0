package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ipal-monitor/internal/events"
	"ipal-monitor/internal/hub"
	"ipal-monitor/internal/metrics"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

const publishTimeout = 5 * time.Second

// ReadingInput is the payload posted by the sensor device. Missing fields are zero.
type ReadingInput struct {
	PH          float64 `json:"ph" validate:"gte=0,lte=14"`
	Temperature float64 `json:"temperature" validate:"gte=-10,lte=100"`
	TDS         float64 `json:"tds" validate:"gte=0,lte=10000"`
}

// IngestResult describes a stored reading.
type IngestResult struct {
	Status      model.Status       `json:"status"`
	AlertsCount int                `json:"alerts_count"`
	Reading     *model.Reading     `json:"-"`
	Alerts      []model.AlertDraft `json:"-"`
}

// SensorUpdate is the live payload broadcast for every stored reading.
type SensorUpdate struct {
	Timestamp   time.Time          `json:"timestamp"`
	PH          float64            `json:"ph"`
	Temperature float64            `json:"temperature"`
	TDS         float64            `json:"tds"`
	Status      model.Status       `json:"status"`
	Alerts      []model.AlertDraft `json:"alerts"`
}

// IngestService stores readings and raises alerts.
type IngestService struct {
	store       *store.Store
	evaluator   *Evaluator
	cache       LatestCache
	publisher   events.Publisher
	broadcaster Broadcaster
	deviceName  string
	now         func() time.Time
	logger      zerolog.Logger
}

// IngestOption configures optional IngestService backends.
type IngestOption func(*IngestService)

// WithCache enables the latest-reading cache.
func WithCache(c LatestCache) IngestOption {
	return func(s *IngestService) { s.cache = c }
}

// WithPublisher enables event publishing.
func WithPublisher(p events.Publisher) IngestOption {
	return func(s *IngestService) { s.publisher = p }
}

// WithBroadcaster enables live dashboard updates.
func WithBroadcaster(b Broadcaster) IngestOption {
	return func(s *IngestService) { s.broadcaster = b }
}

// NewIngestService creates an IngestService.
func NewIngestService(st *store.Store, evaluator *Evaluator, deviceName string, logger zerolog.Logger, opts ...IngestOption) *IngestService {
	s := &IngestService{
		store:      st,
		evaluator:  evaluator,
		publisher:  events.NopPublisher{},
		deviceName: deviceName,
		now:        time.Now,
		logger:     logger.With().Str("component", "ingest").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest validates, evaluates and stores a reading. remoteAddr is recorded
// as the device's IP address.
func (s *IngestService) Ingest(ctx context.Context, in ReadingInput, remoteAddr string) (*IngestResult, error) {
	if err := validate.Struct(in); err != nil {
		metrics.ReadingsRejected.Inc()
		return nil, validationError(ErrInvalidReading, err)
	}

	thresholds, err := s.store.ListThresholds(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reading := &model.Reading{
		Timestamp:   now,
		PH:          in.PH,
		Temperature: in.Temperature,
		TDS:         in.TDS,
	}

	eval := s.evaluator.Evaluate(reading, model.NewThresholdSet(thresholds))
	reading.Status = eval.Status

	var device *model.DeviceStatus
	wasOnline := false
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.CreateReading(ctx, reading); err != nil {
			return err
		}

		alerts := make([]*model.Alert, 0, len(eval.Alerts))
		for _, draft := range eval.Alerts {
			alerts = append(alerts, model.NewAlert(draft, now))
		}
		if err := tx.CreateAlerts(ctx, alerts); err != nil {
			return err
		}

		prev, err := tx.GetDevice(ctx)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		wasOnline = prev != nil && prev.Status == model.DeviceOnline

		device, err = tx.MarkDeviceOnline(ctx, remoteAddr, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, reading, eval, device, wasOnline)

	s.logger.Info().
		Uint("reading_id", reading.ID).
		Str("status", string(reading.Status)).
		Int("alerts", len(eval.Alerts)).
		Str("remote", remoteAddr).
		Msg("reading stored")

	return &IngestResult{
		Status:      reading.Status,
		AlertsCount: len(eval.Alerts),
		Reading:     reading,
		Alerts:      eval.Alerts,
	}, nil
}

// afterCommit runs the side effects of a stored reading. Failures are logged only.
func (s *IngestService) afterCommit(ctx context.Context, reading *model.Reading, eval *EvaluationResult, device *model.DeviceStatus, wasOnline bool) {
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, reading); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache latest reading")
			if err := s.cache.Invalidate(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("failed to invalidate latest reading")
			}
		}
	}

	event := &events.ReadingEvent{
		ID:         uuid.NewString(),
		Type:       events.TypeReadingIngested,
		DeviceName: s.deviceName,
		OccurredAt: reading.Timestamp,
		Reading:    reading,
		Alerts:     eval.Alerts,
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish reading event")
	}
	cancel()

	metrics.ReadingsTotal.WithLabelValues(string(reading.Status)).Inc()
	for _, p := range model.Parameters {
		metrics.LastReading.WithLabelValues(string(p)).Set(reading.Value(p))
	}
	for _, a := range eval.Alerts {
		metrics.AlertsTotal.WithLabelValues(a.Parameter, string(a.Severity)).Inc()
	}
	if device != nil {
		metrics.SetDeviceOnline(true)
	}

	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(hub.EventSensorUpdate, &SensorUpdate{
		Timestamp:   reading.Timestamp,
		PH:          reading.PH,
		Temperature: reading.Temperature,
		TDS:         reading.TDS,
		Status:      reading.Status,
		Alerts:      eval.Alerts,
	})
	if device != nil && !wasOnline {
		s.broadcaster.Broadcast(hub.EventDeviceStatus, device)
	}
}
