package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/hub"
	"ipal-monitor/internal/metrics"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// DeviceService reports and maintains the sensor device's connectivity.
type DeviceService struct {
	store        *store.Store
	broadcaster  Broadcaster
	deviceName   string
	offlineAfter time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// NewDeviceService creates a DeviceService. b may be nil.
func NewDeviceService(st *store.Store, b Broadcaster, deviceName string, offlineAfter time.Duration, logger zerolog.Logger) *DeviceService {
	return &DeviceService{
		store:        st,
		broadcaster:  b,
		deviceName:   deviceName,
		offlineAfter: offlineAfter,
		now:          time.Now,
		logger:       logger.With().Str("component", "device").Logger(),
	}
}

// DeviceName returns the configured device name.
func (s *DeviceService) DeviceName() string {
	return s.deviceName
}

// Status returns the device row, first marking it offline when it has not
// been seen within the offline window. It returns ErrNotFound when no row exists.
func (s *DeviceService) Status(ctx context.Context) (*model.DeviceStatus, error) {
	d, _, err := s.refresh(ctx)
	return d, err
}

// CheckOffline marks a stale device offline and reports whether its status changed.
func (s *DeviceService) CheckOffline(ctx context.Context) (bool, error) {
	_, changed, err := s.refresh(ctx)
	return changed, err
}

func (s *DeviceService) refresh(ctx context.Context) (*model.DeviceStatus, bool, error) {
	d, err := s.store.GetDevice(ctx)
	if err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	if d.Status == model.DeviceOffline || !d.IsStale(now, s.offlineAfter) {
		return d, false, nil
	}

	// Conditional on last_seen so an ingest committed since the read wins.
	changed, err := s.store.MarkDeviceOffline(ctx, d.ID, now.Add(-s.offlineAfter))
	if err != nil {
		return nil, false, err
	}
	if d, err = s.store.GetDevice(ctx); err != nil {
		return nil, false, err
	}
	if !changed {
		return d, false, nil
	}

	metrics.SetDeviceOnline(false)
	s.logger.Warn().
		Str("device", d.DeviceName).
		Time("last_seen", d.LastSeen).
		Msg("device went offline")
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(hub.EventDeviceStatus, d)
	}
	return d, true, nil
}

// Run checks the device every interval until ctx is cancelled.
func (s *DeviceService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Dur("offline_after", s.offlineAfter).Msg("offline watcher started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, err := s.CheckOffline(ctx)
			if err != nil && !errors.Is(err, ErrNotFound) && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("offline check failed")
			}
		}
	}
}
