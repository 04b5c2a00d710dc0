package store

import (
	"context"
	"fmt"
	"time"

	"ipal-monitor/internal/model"
)

// AlertFilter selects alerts.
type AlertFilter struct {
	Limit      int // <= 0 means no limit
	UnreadOnly bool
	Start      *time.Time
	End        *time.Time
}

// CreateAlerts inserts alerts in the given order.
func (s *Store) CreateAlerts(ctx context.Context, alerts []*model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&alerts).Error; err != nil {
		return fmt.Errorf("failed to insert alerts: %w", err)
	}
	return nil
}

// ListAlerts returns alerts newest first.
func (s *Store) ListAlerts(ctx context.Context, f AlertFilter) ([]*model.Alert, error) {
	q := s.db.WithContext(ctx).Model(&model.Alert{})
	if f.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if f.Start != nil {
		q = q.Where("timestamp >= ?", f.Start.UTC())
	}
	if f.End != nil {
		q = q.Where("timestamp <= ?", f.End.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	alerts := make([]*model.Alert, 0)
	if err := q.Order("timestamp DESC").Order("id DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// MarkAlertRead flags an alert as read. It returns ErrNotFound for unknown ids.
func (s *Store) MarkAlertRead(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.Alert{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark alert %d read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnreadAlerts returns the number of unread alerts.
func (s *Store) CountUnreadAlerts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Alert{}).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// DeleteAlertsBefore removes alerts older than cutoff.
func (s *Store) DeleteAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&model.Alert{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
