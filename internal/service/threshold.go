package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// ThresholdInput is the body of a threshold update.
type ThresholdInput struct {
	Parameter string   `json:"parameter" validate:"required,oneof=ph temperature tds"`
	MinValue  *float64 `json:"min_value"`
	MaxValue  *float64 `json:"max_value"`
	Unit      string   `json:"unit" validate:"max=20"`
}

// ThresholdService manages alert thresholds.
type ThresholdService struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewThresholdService creates a ThresholdService.
func NewThresholdService(st *store.Store, logger zerolog.Logger) *ThresholdService {
	return &ThresholdService{
		store:  st,
		logger: logger.With().Str("component", "thresholds").Logger(),
	}
}

// List returns all thresholds.
func (s *ThresholdService) List(ctx context.Context) ([]*model.Threshold, error) {
	return s.store.ListThresholds(ctx)
}

// Upsert creates or replaces the threshold of a parameter. Omitted bounds
// become unbounded.
func (s *ThresholdService) Upsert(ctx context.Context, in ThresholdInput, changedBy string) (*model.Threshold, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(ErrInvalidThreshold, err)
	}
	if in.MinValue != nil && in.MaxValue != nil && *in.MinValue > *in.MaxValue {
		return nil, fmt.Errorf("%w: min_value %v is greater than max_value %v", ErrInvalidThreshold, *in.MinValue, *in.MaxValue)
	}

	saved, err := s.store.UpsertThreshold(ctx, &model.Threshold{
		Parameter: model.Parameter(in.Parameter),
		MinValue:  in.MinValue,
		MaxValue:  in.MaxValue,
		Unit:      in.Unit,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("parameter", in.Parameter).
		Str("min", formatBound(saved.MinValue, "none")).
		Str("max", formatBound(saved.MaxValue, "none")).
		Str("changed_by", changedBy).
		Msg("threshold updated")

	return saved, nil
}
