package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ipal-monitor/internal/cache"
	"ipal-monitor/internal/config"
	"ipal-monitor/internal/events"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// createTestConfig returns a config with the production defaults.
func createTestConfig() *config.Config {
	return &config.Config{
		Admin: config.AdminConfig{Username: "admin", Password: "admin123", Email: "admin@rsmatapwt.com"},
		Device: config.DeviceConfig{
			Name:          "ESP32-IPAL-01",
			OfflineAfter:  5 * time.Minute,
			CheckInterval: 30 * time.Second,
		},
		Thresholds: config.ThresholdsConfig{
			PH:          config.ThresholdRange{Min: 6, Max: 9, Unit: "pH"},
			Temperature: config.ThresholdRange{Min: 0, Max: 30, Unit: "°C"},
			TDS:         config.ThresholdRange{Min: 0, Max: 2000, Unit: "ppm"},
		},
	}
}

// createTestStore opens an in-memory database seeded like a fresh install.
func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, Bootstrap(context.Background(), st, createTestConfig()))
	return st
}

// fixedClock returns a clock function pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeCache is an in-memory LatestCache.
type fakeCache struct {
	mu          sync.Mutex
	latest      *model.Reading
	setErr      error
	invalidated int
	beforeWarm  func() // runs before a warm takes the lock
}

func (c *fakeCache) SetLatest(_ context.Context, r *model.Reading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.latest = r
	return nil
}

func (c *fakeCache) WarmLatest(_ context.Context, r *model.Reading) (bool, error) {
	if c.beforeWarm != nil {
		c.beforeWarm()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return false, c.setErr
	}
	if c.latest != nil {
		return false, nil
	}
	c.latest = r
	return true, nil
}

func (c *fakeCache) Latest(context.Context) (*model.Reading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil, cache.ErrMiss
	}
	return c.latest, nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = nil
	c.invalidated++
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*events.ReadingEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e *events.ReadingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// broadcastRecord is one recorded broadcast.
type broadcastRecord struct {
	event string
	data  interface{}
}

// fakeBroadcaster records broadcasts.
type fakeBroadcaster struct {
	mu      sync.Mutex
	records []broadcastRecord
}

func (b *fakeBroadcaster) Broadcast(event string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, broadcastRecord{event: event, data: data})
}

func (b *fakeBroadcaster) events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.records))
	for _, r := range b.records {
		names = append(names, r.event)
	}
	return names
}

var errBackendDown = errors.New("backend down")
