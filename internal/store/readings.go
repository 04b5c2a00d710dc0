package store

import (
	"context"
	"fmt"
	"time"

	"ipal-monitor/internal/model"
)

// ReadingFilter selects readings for the history view.
type ReadingFilter struct {
	Start *time.Time
	End   *time.Time
	Limit int // <= 0 means no limit
}

// CreateReading inserts a reading.
func (s *Store) CreateReading(ctx context.Context, r *model.Reading) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}

// LatestReading returns the most recent reading, or ErrNotFound.
func (s *Store) LatestReading(ctx context.Context) (*model.Reading, error) {
	var r model.Reading
	err := s.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC").First(&r).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// ListReadings returns readings newest first.
func (s *Store) ListReadings(ctx context.Context, f ReadingFilter) ([]*model.Reading, error) {
	q := s.db.WithContext(ctx).Model(&model.Reading{})
	if f.Start != nil {
		q = q.Where("timestamp >= ?", f.Start.UTC())
	}
	if f.End != nil {
		q = q.Where("timestamp <= ?", f.End.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	readings := make([]*model.Reading, 0)
	if err := q.Order("timestamp DESC").Order("id DESC").Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}

// ReadingsBetween returns readings in [start, end] oldest first.
func (s *Store) ReadingsBetween(ctx context.Context, start, end time.Time) ([]*model.Reading, error) {
	readings := make([]*model.Reading, 0)
	err := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start.UTC(), end.UTC()).
		Order("timestamp ASC").Order("id ASC").
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}
	return readings, nil
}

// DeleteReadingsBefore removes readings older than cutoff.
func (s *Store) DeleteReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("timestamp < ?", cutoff.UTC()).Delete(&model.Reading{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete readings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PurgeResult reports how many rows a purge removed.
type PurgeResult struct {
	Cutoff   time.Time `json:"cutoff"`
	Readings int64     `json:"deleted_readings"`
	Alerts   int64     `json:"deleted_alerts"`
}

// PurgeBefore deletes readings and alerts older than cutoff in one transaction.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (*PurgeResult, error) {
	result := &PurgeResult{Cutoff: cutoff.UTC()}
	err := s.Transaction(ctx, func(tx *Store) error {
		var err error
		if result.Readings, err = tx.DeleteReadingsBefore(ctx, cutoff); err != nil {
			return err
		}
		result.Alerts, err = tx.DeleteAlertsBefore(ctx, cutoff)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
