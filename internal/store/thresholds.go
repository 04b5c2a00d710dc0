package store

import (
	"context"
	"errors"
	"fmt"

	"ipal-monitor/internal/model"
)

// ListThresholds returns all thresholds ordered by id.
func (s *Store) ListThresholds(ctx context.Context) ([]*model.Threshold, error) {
	thresholds := make([]*model.Threshold, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&thresholds).Error; err != nil {
		return nil, fmt.Errorf("failed to list thresholds: %w", err)
	}
	return thresholds, nil
}

// GetThreshold returns the threshold of a parameter, or ErrNotFound.
func (s *Store) GetThreshold(ctx context.Context, p model.Parameter) (*model.Threshold, error) {
	var t model.Threshold
	if err := s.db.WithContext(ctx).Where("parameter = ?", p).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// UpsertThreshold replaces the bounds and unit of the parameter's threshold,
// creating the row when it does not exist.
func (s *Store) UpsertThreshold(ctx context.Context, t *model.Threshold) (*model.Threshold, error) {
	var saved *model.Threshold
	err := s.Transaction(ctx, func(tx *Store) error {
		existing, err := tx.GetThreshold(ctx, t.Parameter)
		switch {
		case errors.Is(err, ErrNotFound):
			row := &model.Threshold{
				Parameter: t.Parameter,
				MinValue:  t.MinValue,
				MaxValue:  t.MaxValue,
				Unit:      t.Unit,
			}
			if err := tx.db.WithContext(ctx).Create(row).Error; err != nil {
				return fmt.Errorf("failed to create threshold: %w", err)
			}
			saved = row
			return nil
		case err != nil:
			return err
		}

		existing.MinValue = t.MinValue
		existing.MaxValue = t.MaxValue
		existing.Unit = t.Unit
		if err := tx.db.WithContext(ctx).Save(existing).Error; err != nil {
			return fmt.Errorf("failed to update threshold: %w", err)
		}
		saved = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
