// Package store persists readings, alerts, thresholds, users and the device
// status in SQLite through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"ipal-monitor/internal/model"
)

// Sentinel errors returned by the store.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateUser = errors.New("username already exists")
)

// Store wraps a gorm database handle.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open opens (or creates) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	log := logger.With().Str("component", "store").Logger()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newGormLogger(log),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// SQLite allows a single writer; a single connection also keeps
	// ":memory:" databases alive across queries.
	sqlDB.SetMaxOpenConns(1)

	log.Debug().Str("path", path).Msg("database opened")

	return &Store{db: db, logger: log}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&model.Reading{},
		&model.Alert{},
		&model.User{},
		&model.Threshold{},
		&model.DeviceStatus{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Transaction runs fn inside a database transaction. The Store passed to fn
// is bound to the transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, logger: s.logger})
	})
}

// SeedOptions describes the rows created on an empty database.
type SeedOptions struct {
	Admin      *model.User
	Thresholds []*model.Threshold
	DeviceName string
}

// Seed creates the bootstrap admin, the default thresholds and the device
// row when they do not exist yet. Existing rows are left untouched.
func (s *Store) Seed(ctx context.Context, opts SeedOptions) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if opts.Admin != nil {
			_, err := tx.GetUserByUsername(ctx, opts.Admin.Username)
			switch {
			case errors.Is(err, ErrNotFound):
				if err := tx.db.WithContext(ctx).Create(opts.Admin).Error; err != nil {
					return fmt.Errorf("failed to create admin user: %w", err)
				}
				s.logger.Info().Str("username", opts.Admin.Username).Msg("default admin user created")
			case err != nil:
				return err
			}
		}

		for _, t := range opts.Thresholds {
			var count int64
			if err := tx.db.WithContext(ctx).Model(&model.Threshold{}).
				Where("parameter = ?", t.Parameter).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check threshold %s: %w", t.Parameter, err)
			}
			if count > 0 {
				continue
			}
			if err := tx.db.WithContext(ctx).Create(t).Error; err != nil {
				return fmt.Errorf("failed to create threshold %s: %w", t.Parameter, err)
			}
			s.logger.Info().Str("parameter", string(t.Parameter)).Msg("default threshold created")
		}

		if opts.DeviceName != "" {
			_, err := tx.GetDevice(ctx)
			switch {
			case errors.Is(err, ErrNotFound):
				device := &model.DeviceStatus{
					DeviceName: opts.DeviceName,
					Status:     model.DeviceOffline,
					LastSeen:   time.Now().UTC(),
				}
				if err := tx.db.WithContext(ctx).Create(device).Error; err != nil {
					return fmt.Errorf("failed to create device status: %w", err)
				}
				s.logger.Info().Str("device", opts.DeviceName).Msg("device status initialized")
			case err != nil:
				return err
			}
		}

		return nil
	})
}

// notFound maps gorm's record-not-found error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
