package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ipal-monitor/internal/model"
)

// GetDevice returns the first device row, or ErrNotFound.
func (s *Store) GetDevice(ctx context.Context) (*model.DeviceStatus, error) {
	var d model.DeviceStatus
	if err := s.db.WithContext(ctx).Order("id ASC").First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// MarkDeviceOffline flips device id to offline when it is still online and
// was last seen before cutoff. It reports whether the row changed; a contact
// recorded after the caller read the row makes it a no-op.
func (s *Store) MarkDeviceOffline(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&model.DeviceStatus{}).
		Where("id = ? AND status <> ? AND last_seen < ?", id, model.DeviceOffline, cutoff.UTC()).
		Update("status", model.DeviceOffline)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark device offline: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkDeviceOnline records a contact from the device. It is a no-op when no
// device row exists and returns the updated row otherwise.
func (s *Store) MarkDeviceOnline(ctx context.Context, ip string, at time.Time) (*model.DeviceStatus, error) {
	d, err := s.GetDevice(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d.Status = model.DeviceOnline
	d.LastSeen = at.UTC()
	d.IPAddress = ip
	err = s.db.WithContext(ctx).
		Model(&model.DeviceStatus{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"status":     d.Status,
			"last_seen":  d.LastSeen,
			"ip_address": d.IPAddress,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to mark device online: %w", err)
	}
	return d, nil
}
