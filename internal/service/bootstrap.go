package service

import (
	"context"
	"fmt"

	"ipal-monitor/internal/auth"
	"ipal-monitor/internal/config"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/store"
)

// Bootstrap migrates the schema and seeds the admin account, the default
// thresholds and the device row when missing.
func Bootstrap(ctx context.Context, st *store.Store, cfg *config.Config) error {
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	return st.Seed(ctx, store.SeedOptions{
		Admin: &model.User{
			Username:     cfg.Admin.Username,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Email:        cfg.Admin.Email,
		},
		Thresholds: DefaultThresholds(cfg.Thresholds),
		DeviceName: cfg.Device.Name,
	})
}

// DefaultThresholds converts the configured default ranges to thresholds.
func DefaultThresholds(cfg config.ThresholdsConfig) []*model.Threshold {
	build := func(p model.Parameter, r config.ThresholdRange) *model.Threshold {
		return &model.Threshold{
			Parameter: p,
			MinValue:  model.Float(r.Min),
			MaxValue:  model.Float(r.Max),
			Unit:      r.Unit,
		}
	}
	return []*model.Threshold{
		build(model.ParameterPH, cfg.PH),
		build(model.ParameterTemperature, cfg.Temperature),
		build(model.ParameterTDS, cfg.TDS),
	}
}
