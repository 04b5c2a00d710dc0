// Package model provides data models for the water quality monitor.
package model

import "time"

// Role is a dashboard user's role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	default:
		return false
	}
}

// CanEditThresholds reports whether the role may change thresholds.
func (r Role) CanEditThresholds() bool {
	return r == RoleAdmin || r == RoleOperator
}

// User is a dashboard account. PasswordHash holds a bcrypt hash.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null" json:"role"`
	Email        string    `gorm:"size:100" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName keeps the table name used by earlier deployments.
func (User) TableName() string {
	return "user"
}
