package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// ReportService assembles water quality reports.
type ReportService struct {
	store      *store.Store
	deviceName string
	version    string
	loc        *time.Location
	now        func() time.Time
	logger     zerolog.Logger
}

// NewReportService creates a ReportService.
func NewReportService(st *store.Store, deviceName, version string, loc *time.Location, logger zerolog.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		store:      st,
		deviceName: deviceName,
		version:    version,
		loc:        loc,
		now:        time.Now,
		logger:     logger.With().Str("component", "report").Logger(),
	}
}

// Build loads readings, alerts and thresholds for period into a Report.
// An empty period is treated as "today".
func (s *ReportService) Build(ctx context.Context, period string) (*model.Report, error) {
	if period == "" {
		period = model.PeriodToday
	}
	start, end := PeriodWindow(period, s.now(), s.loc)

	r := model.NewReport(period, start, end)
	r.GeneratedAt = s.now().In(s.loc)
	r.DeviceName = s.deviceName
	r.Version = s.version

	readings, err := s.store.ReadingsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	r.Readings = readings

	alerts, err := s.store.ListAlerts(ctx, store.AlertFilter{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}
	r.Alerts = alerts

	thresholds, err := s.store.ListThresholds(ctx)
	if err != nil {
		return nil, err
	}
	r.Thresholds = thresholds

	r.Finalize(s.now().In(s.loc))

	s.logger.Info().
		Str("period", period).
		Int("readings", len(r.Readings)).
		Int("alerts", len(r.Alerts)).
		Msg("report assembled")

	return r, nil
}
