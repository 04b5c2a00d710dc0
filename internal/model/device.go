// Package model provides data models for the water quality monitor.
package model

import "time"

// DeviceState is the connectivity state of the sensor device.
type DeviceState string

const (
	DeviceOnline  DeviceState = "online"
	DeviceOffline DeviceState = "offline"
)

// DeviceStatus tracks the single sensor device.
type DeviceStatus struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	DeviceName     string      `gorm:"size:50;not null" json:"device_name"`
	Status         DeviceState `gorm:"size:20;default:offline" json:"status"`
	LastSeen       time.Time   `json:"last_seen"`
	SignalStrength int         `gorm:"default:0" json:"signal_strength"`
	IPAddress      string      `gorm:"size:20" json:"ip_address"`
}

// TableName keeps the table name used by earlier deployments.
func (DeviceStatus) TableName() string {
	return "device_status"
}

// IsStale reports whether the device has not been seen within offlineAfter.
func (d *DeviceStatus) IsStale(now time.Time, offlineAfter time.Duration) bool {
	return now.Sub(d.LastSeen) > offlineAfter
}
