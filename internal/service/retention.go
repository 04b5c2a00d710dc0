package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/metrics"
	"ipal-monitor/internal/store"
)

// DefaultRetentionDays is used when a purge request names no period.
const DefaultRetentionDays = 90

// RetentionService removes old readings and alerts.
type RetentionService struct {
	store  *store.Store
	cache  LatestCache
	now    func() time.Time
	logger zerolog.Logger
}

// NewRetentionService creates a RetentionService. c may be nil.
func NewRetentionService(st *store.Store, c LatestCache, logger zerolog.Logger) *RetentionService {
	return &RetentionService{
		store:  st,
		cache:  c,
		now:    time.Now,
		logger: logger.With().Str("component", "retention").Logger(),
	}
}

// Purge deletes readings and alerts older than days.
func (s *RetentionService) Purge(ctx context.Context, days int) (*store.PurgeResult, error) {
	if days < 1 {
		return nil, ErrInvalidRetention
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days)
	result, err := s.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	metrics.RowsPurged.WithLabelValues("sensor_data").Add(float64(result.Readings))
	metrics.RowsPurged.WithLabelValues("alert").Add(float64(result.Alerts))

	if result.Readings > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate latest reading")
		}
	}

	s.logger.Info().
		Int("days", days).
		Time("cutoff", cutoff).
		Int64("readings", result.Readings).
		Int64("alerts", result.Alerts).
		Msg("old data purged")

	return result, nil
}

// Run purges every interval until ctx is cancelled.
func (s *RetentionService) Run(ctx context.Context, days int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Int("days", days).Dur("interval", interval).Msg("retention loop started")

	for {
		if _, err := s.Purge(ctx, days); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("purge failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
