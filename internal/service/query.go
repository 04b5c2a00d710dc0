package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/cache"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// Default list sizes.
const (
	DefaultHistoryLimit = 100
	DefaultAlertsLimit  = 10
)

// HistoryQuery filters the reading history.
type HistoryQuery struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// QueryService answers dashboard read queries.
type QueryService struct {
	store  *store.Store
	cache  LatestCache
	loc    *time.Location
	now    func() time.Time
	logger zerolog.Logger
}

// NewQueryService creates a QueryService. c may be nil; loc is the timezone
// used to find the start of "today".
func NewQueryService(st *store.Store, c LatestCache, loc *time.Location, logger zerolog.Logger) *QueryService {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryService{
		store:  st,
		cache:  c,
		loc:    loc,
		now:    time.Now,
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// Current returns the latest reading, or ErrNotFound.
func (s *QueryService) Current(ctx context.Context) (*model.Reading, error) {
	if s.cache != nil {
		r, err := s.cache.Latest(ctx)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn().Err(err).Msg("cache lookup failed, falling back to database")
		}
	}

	r, err := s.store.LatestReading(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if _, err := s.cache.WarmLatest(ctx, r); err != nil {
			s.logger.Warn().Err(err).Msg("failed to warm cache")
		}
	}
	return r, nil
}

// History returns readings newest first.
func (s *QueryService) History(ctx context.Context, q HistoryQuery) ([]*model.Reading, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	return s.store.ListReadings(ctx, store.ReadingFilter{Start: q.Start, End: q.End, Limit: q.Limit})
}

// Alerts returns the newest alerts.
func (s *QueryService) Alerts(ctx context.Context, limit int, unreadOnly bool) ([]*model.Alert, error) {
	if limit <= 0 {
		limit = DefaultAlertsLimit
	}
	return s.store.ListAlerts(ctx, store.AlertFilter{Limit: limit, UnreadOnly: unreadOnly})
}

// MarkAlertRead flags an alert as read, or returns ErrNotFound.
func (s *QueryService) MarkAlertRead(ctx context.Context, id uint) error {
	return s.store.MarkAlertRead(ctx, id)
}

// Statistics aggregates readings for a named period. It returns ErrNoData
// when the period holds no readings.
func (s *QueryService) Statistics(ctx context.Context, period string) (*model.Statistics, error) {
	if period == "" {
		period = model.PeriodToday
	}
	start, end := PeriodWindow(period, s.now(), s.loc)

	readings, err := s.store.ReadingsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNoData
	}

	return model.NewStatistics(period, start, end, readings), nil
}

// PeriodWindow returns the [start, end] window of a period ending at now.
// "today" starts at local midnight in loc; unknown periods cover one day.
func PeriodWindow(period string, now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	switch period {
	case model.PeriodToday:
		y, m, d := local.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), local
	case model.PeriodWeek:
		return local.AddDate(0, 0, -7), local
	case model.PeriodMonth:
		return local.AddDate(0, 0, -30), local
	default:
		return local.AddDate(0, 0, -1), local
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 timestamp. A trailing "Z" is accepted;
// values without an offset are read as UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
