package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

func insertReadings(t *testing.T, st *store.Store, readings ...*model.Reading) {
	t.Helper()
	for _, r := range readings {
		require.NoError(t, st.CreateReading(context.Background(), r))
	}
}

// =============================================================================
// Current Tests
// =============================================================================

func TestQueryService_Current(t *testing.T) {
	st := createTestStore(t)
	c := &fakeCache{}
	svc := NewQueryService(st, c, time.UTC, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC()
	insertReadings(t, st,
		&model.Reading{Timestamp: now.Add(-time.Minute), PH: 7.0},
		&model.Reading{Timestamp: now, PH: 7.3},
	)

	r, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.3, r.PH)
	require.NotNil(t, c.latest, "cache warmed from database")

	c.latest = &model.Reading{ID: 42, PH: 8.1}
	r, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(42), r.ID, "served from cache")
}

func TestQueryService_Current_WarmKeepsNewerReading(t *testing.T) {
	st := createTestStore(t)
	c := &fakeCache{}
	svc := NewQueryService(st, c, time.UTC, zerolog.Nop())
	ingest := NewIngestService(st, NewEvaluator(zerolog.Nop()), "ESP32-IPAL-01", zerolog.Nop(), WithCache(c))
	ctx := context.Background()

	insertReadings(t, st, &model.Reading{Timestamp: time.Now().UTC().Add(-time.Minute), PH: 7.0})

	// A reading arrives after the miss was served from the database.
	c.beforeWarm = func() {
		c.beforeWarm = nil
		_, err := ingest.Ingest(ctx, ReadingInput{PH: 8, Temperature: 25, TDS: 300}, "10.0.0.7")
		require.NoError(t, err)
	}

	r, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7.0, r.PH, "the miss answers with what the database had")

	r, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8.0, r.PH, "the older reading did not replace the cached one")
}

func TestQueryService_Current_WithoutCache(t *testing.T) {
	st := createTestStore(t)
	svc := NewQueryService(st, nil, nil, zerolog.Nop())
	insertReadings(t, st, &model.Reading{Timestamp: time.Now().UTC(), PH: 6.8})

	r, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6.8, r.PH)
}

// =============================================================================
// History and Alerts Tests
// =============================================================================

func TestQueryService_History(t *testing.T) {
	st := createTestStore(t)
	svc := NewQueryService(st, nil, time.UTC, zerolog.Nop())
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 120; i++ {
		insertReadings(t, st, &model.Reading{Timestamp: base.Add(time.Duration(i) * time.Minute), PH: 7})
	}

	all, err := svc.History(context.Background(), HistoryQuery{})
	require.NoError(t, err)
	assert.Len(t, all, DefaultHistoryLimit)
	assert.True(t, all[0].Timestamp.Equal(base.Add(119*time.Minute)))

	start := base.Add(10 * time.Minute)
	end := base.Add(19 * time.Minute)
	window, err := svc.History(context.Background(), HistoryQuery{Start: &start, End: &end, Limit: 5})
	require.NoError(t, err)
	require.Len(t, window, 5)
	assert.True(t, window[0].Timestamp.Equal(end))
}

func TestQueryService_Alerts(t *testing.T) {
	st := createTestStore(t)
	svc := NewQueryService(st, nil, time.UTC, zerolog.Nop())
	ctx := context.Background()
	now := time.Now().UTC()

	alerts := make([]*model.Alert, 0, 15)
	for i := 0; i < 15; i++ {
		alerts = append(alerts, &model.Alert{
			Timestamp: now.Add(time.Duration(i) * time.Second),
			Parameter: "TDS",
			Message:   "TDS tinggi",
			Severity:  model.SeverityWarning,
		})
	}
	require.NoError(t, st.CreateAlerts(ctx, alerts))

	list, err := svc.Alerts(ctx, 0, false)
	require.NoError(t, err)
	assert.Len(t, list, DefaultAlertsLimit)

	require.NoError(t, svc.MarkAlertRead(ctx, list[0].ID))
	assert.ErrorIs(t, svc.MarkAlertRead(ctx, 10000), ErrNotFound)

	unread, err := svc.Alerts(ctx, 100, true)
	require.NoError(t, err)
	assert.Len(t, unread, 14)
}

// =============================================================================
// Statistics Tests
// =============================================================================

func TestQueryService_Statistics(t *testing.T) {
	st := createTestStore(t)
	svc := NewQueryService(st, nil, time.UTC, zerolog.Nop())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	_, err := svc.Statistics(context.Background(), model.PeriodToday)
	assert.ErrorIs(t, err, ErrNoData)

	insertReadings(t, st,
		&model.Reading{Timestamp: now.Add(-2 * time.Hour), PH: 6.0, Temperature: 20, TDS: 500},
		&model.Reading{Timestamp: now.Add(-1 * time.Hour), PH: 8.0, Temperature: 30, TDS: 1500},
		&model.Reading{Timestamp: now.AddDate(0, 0, -3), PH: 7.0, Temperature: 25, TDS: 1000},
	)

	stats, err := svc.Statistics(context.Background(), model.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, "today", stats.Period)
	assert.Equal(t, 2, stats.DataPoints)
	assert.InDelta(t, 7.0, stats.PH.Avg, 1e-9)
	assert.Equal(t, 6.0, stats.PH.Min)
	assert.Equal(t, 8.0, stats.PH.Max)
	assert.Equal(t, 1500.0, stats.TDS.Max)

	week, err := svc.Statistics(context.Background(), model.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, 3, week.DataPoints)

	unknown, err := svc.Statistics(context.Background(), "quarter")
	require.NoError(t, err)
	assert.Equal(t, "quarter", unknown.Period)
	assert.Equal(t, 2, unknown.DataPoints)
}

func TestPeriodWindow(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	now := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC) // 09:30 WIB

	start, end := PeriodWindow(model.PeriodToday, now, jakarta)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, jakarta), start)
	assert.True(t, end.Equal(now))

	start, _ = PeriodWindow(model.PeriodWeek, now, jakarta)
	assert.True(t, start.Equal(now.AddDate(0, 0, -7)))

	start, _ = PeriodWindow(model.PeriodMonth, now, jakarta)
	assert.True(t, start.Equal(now.AddDate(0, 0, -30)))

	start, _ = PeriodWindow("anything", now, nil)
	assert.True(t, start.Equal(now.AddDate(0, 0, -1)))
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	valid := []string{
		"2026-03-01T08:30:00Z",
		"2026-03-01T08:30:00.000Z",
		"2026-03-01T15:30:00+07:00",
		"2026-03-01T08:30:00",
		"2026-03-01T08:30",
		"2026-03-01 08:30:00",
	}
	for _, v := range valid {
		got, err := ParseTime(v)
		require.NoError(t, err, v)
		assert.True(t, want.Equal(got), "%s parsed as %s", v, got)
	}

	day, err := ParseTime("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
