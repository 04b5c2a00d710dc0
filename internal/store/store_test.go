package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipal-monitor/internal/model"
)

// createTestStore opens a migrated in-memory database.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func defaultThresholds() []*model.Threshold {
	return []*model.Threshold{
		{Parameter: model.ParameterPH, MinValue: model.Float(6), MaxValue: model.Float(9), Unit: "pH"},
		{Parameter: model.ParameterTemperature, MinValue: model.Float(0), MaxValue: model.Float(30), Unit: "°C"},
		{Parameter: model.ParameterTDS, MinValue: model.Float(0), MaxValue: model.Float(2000), Unit: "ppm"},
	}
}

func seedTestStore(t *testing.T, s *Store) {
	t.Helper()
	err := s.Seed(context.Background(), SeedOptions{
		Admin:      &model.User{Username: "admin", PasswordHash: "hash", Role: model.RoleAdmin, Email: "admin@rsmatapwt.com"},
		Thresholds: defaultThresholds(),
		DeviceName: "ESP32-IPAL-01",
	})
	require.NoError(t, err)
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("", zerolog.Nop())
	assert.Error(t, err)
}

func TestStore_Ping(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestStore_Seed_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedTestStore(t, s)
	seedTestStore(t, s)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, model.RoleAdmin, users[0].Role)

	thresholds, err := s.ListThresholds(ctx)
	require.NoError(t, err)
	assert.Len(t, thresholds, 3)

	device, err := s.GetDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ESP32-IPAL-01", device.DeviceName)
	assert.Equal(t, model.DeviceOffline, device.Status)
}

func TestStore_Seed_KeepsEditedThreshold(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertThreshold(ctx, &model.Threshold{Parameter: model.ParameterPH, MinValue: model.Float(6.5), MaxValue: model.Float(8.5), Unit: "pH"})
	require.NoError(t, err)

	seedTestStore(t, s)

	ph, err := s.GetThreshold(ctx, model.ParameterPH)
	require.NoError(t, err)
	assert.Equal(t, 6.5, *ph.MinValue)
}

// =============================================================================
// Reading Tests
// =============================================================================

func TestStore_Readings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := s.LatestReading(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateReading(ctx, &model.Reading{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			PH:        7 + float64(i)*0.1,
			Status:    model.StatusNormal,
		}))
	}

	latest, err := s.LatestReading(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 7.4, latest.PH, 1e-9)

	all, err := s.ListReadings(ctx, ReadingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.True(t, all[0].Timestamp.After(all[4].Timestamp), "newest first")

	limited, err := s.ListReadings(ctx, ReadingFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	start := base.Add(time.Hour)
	end := base.Add(3 * time.Hour)
	window, err := s.ListReadings(ctx, ReadingFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Len(t, window, 3)

	between, err := s.ReadingsBetween(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, between, 3)
	assert.True(t, between[0].Timestamp.Before(between[2].Timestamp), "oldest first")
}

func TestStore_PurgeBefore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateReading(ctx, &model.Reading{Timestamp: now.AddDate(0, 0, -100)}))
	require.NoError(t, s.CreateReading(ctx, &model.Reading{Timestamp: now}))
	require.NoError(t, s.CreateAlerts(ctx, []*model.Alert{
		{Timestamp: now.AddDate(0, 0, -100), Parameter: "pH", Message: "old", Severity: model.SeverityWarning},
		{Timestamp: now, Parameter: "pH", Message: "new", Severity: model.SeverityWarning},
	}))

	res, err := s.PurgeBefore(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Readings)
	assert.Equal(t, int64(1), res.Alerts)

	left, err := s.ListReadings(ctx, ReadingFilter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

// =============================================================================
// Alert Tests
// =============================================================================

func TestStore_Alerts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.CreateAlerts(ctx, nil))
	require.NoError(t, s.CreateAlerts(ctx, []*model.Alert{
		{Timestamp: now.Add(-time.Minute), Parameter: "pH", Value: 4, Message: "a", Severity: model.SeverityDanger},
		{Timestamp: now, Parameter: "TDS", Value: 2500, Message: "b", Severity: model.SeverityWarning},
	}))

	alerts, err := s.ListAlerts(ctx, AlertFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "TDS", alerts[0].Parameter)

	require.NoError(t, s.MarkAlertRead(ctx, alerts[0].ID))
	assert.ErrorIs(t, s.MarkAlertRead(ctx, 9999), ErrNotFound)

	unread, err := s.ListAlerts(ctx, AlertFilter{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "pH", unread[0].Parameter)

	count, err := s.CountUnreadAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// =============================================================================
// Threshold Tests
// =============================================================================

func TestStore_UpsertThreshold(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedTestStore(t, s)

	saved, err := s.UpsertThreshold(ctx, &model.Threshold{Parameter: model.ParameterTDS, MaxValue: model.Float(1500), Unit: "ppm"})
	require.NoError(t, err)
	assert.Nil(t, saved.MinValue)
	assert.Equal(t, 1500.0, *saved.MaxValue)

	tds, err := s.GetThreshold(ctx, model.ParameterTDS)
	require.NoError(t, err)
	assert.Nil(t, tds.MinValue)
	assert.Equal(t, saved.ID, tds.ID)

	thresholds, err := s.ListThresholds(ctx)
	require.NoError(t, err)
	assert.Len(t, thresholds, 3)
}

// =============================================================================
// User Tests
// =============================================================================

func TestStore_Users(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	u := &model.User{Username: "operator1", PasswordHash: "hash", Role: model.RoleOperator}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	err := s.CreateUser(ctx, &model.User{Username: "operator1", PasswordHash: "x", Role: model.RoleViewer})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "operator1", got.Username)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// Device Tests
// =============================================================================

func TestStore_MarkDeviceOnline(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d, err := s.MarkDeviceOnline(ctx, "10.0.0.5", time.Now())
	require.NoError(t, err)
	assert.Nil(t, d, "no device row yet")

	seedTestStore(t, s)

	d, err = s.MarkDeviceOnline(ctx, "10.0.0.5", time.Now())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, model.DeviceOnline, d.Status)

	stored, err := s.GetDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", stored.IPAddress)
	assert.Equal(t, model.DeviceOnline, stored.Status)
}

func TestStore_MarkDeviceOffline(t *testing.T) {
	s := createTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.MarkDeviceOnline(ctx, "10.0.0.5", now.Add(-10*time.Minute))
	require.NoError(t, err)
	d, err := s.GetDevice(ctx)
	require.NoError(t, err)

	changed, err := s.MarkDeviceOffline(ctx, d.ID, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.MarkDeviceOffline(ctx, d.ID, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, changed, "already offline rows are not rewritten")

	stored, err := s.GetDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceOffline, stored.Status)
	assert.Equal(t, "10.0.0.5", stored.IPAddress, "only the status column changes")
}

func TestStore_MarkDeviceOffline_ContactAfterRead(t *testing.T) {
	s := createTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.MarkDeviceOnline(ctx, "10.0.0.5", now.Add(-time.Hour))
	require.NoError(t, err)
	stale, err := s.GetDevice(ctx)
	require.NoError(t, err)

	// The device reports after the stale row was read.
	_, err = s.MarkDeviceOnline(ctx, "10.0.0.7", now)
	require.NoError(t, err)

	changed, err := s.MarkDeviceOffline(ctx, stale.ID, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := s.GetDevice(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceOnline, stored.Status)
	assert.Equal(t, "10.0.0.7", stored.IPAddress)
	assert.WithinDuration(t, now, stored.LastSeen, time.Second)
}

func TestStore_TransactionRollback(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *Store) error {
		require.NoError(t, tx.CreateReading(ctx, &model.Reading{Timestamp: time.Now()}))
		return ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LatestReading(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
