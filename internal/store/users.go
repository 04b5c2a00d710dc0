package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ipal-monitor/internal/model"
)

// CreateUser inserts a user. It returns ErrDuplicateUser when the username is taken.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return s.Transaction(ctx, func(tx *Store) error {
		var count int64
		if err := tx.db.WithContext(ctx).Model(&model.User{}).
			Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return ErrDuplicateUser
		}

		if err := tx.db.WithContext(ctx).Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUser
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// GetUser returns a user by id, or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUserByUsername returns a user by username, or ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
