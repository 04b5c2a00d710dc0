// Package model provides data models for the water quality monitor.
package model

import "time"

// Status is the overall water quality status derived from a reading.
type Status string

const (
	StatusNormal  Status = "normal"  // normal
	StatusWarning Status = "warning" // peringatan
	StatusDanger  Status = "danger"  // bahaya
)

// Parameter identifies a measured water quality parameter.
type Parameter string

const (
	ParameterPH          Parameter = "ph"
	ParameterTemperature Parameter = "temperature"
	ParameterTDS         Parameter = "tds"
)

// Parameters lists all supported parameters in evaluation order.
var Parameters = []Parameter{ParameterPH, ParameterTemperature, ParameterTDS}

// IsValid reports whether p is a supported parameter.
func (p Parameter) IsValid() bool {
	switch p {
	case ParameterPH, ParameterTemperature, ParameterTDS:
		return true
	default:
		return false
	}
}

// Label returns the label used in alert records and messages.
func (p Parameter) Label() string {
	switch p {
	case ParameterPH:
		return "pH"
	case ParameterTemperature:
		return "Suhu"
	case ParameterTDS:
		return "TDS"
	default:
		return string(p)
	}
}

// Reading is a single persisted sensor sample.
type Reading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
	PH          float64   `gorm:"column:ph;not null" json:"ph"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	TDS         float64   `gorm:"column:tds;not null" json:"tds"`
	Status      Status    `gorm:"size:20;default:normal" json:"status"`
}

// TableName keeps the table name used by earlier deployments.
func (Reading) TableName() string {
	return "sensor_data"
}

// Value returns the reading's value for the given parameter.
func (r *Reading) Value(p Parameter) float64 {
	switch p {
	case ParameterPH:
		return r.PH
	case ParameterTemperature:
		return r.Temperature
	case ParameterTDS:
		return r.TDS
	default:
		return 0
	}
}

// StatusSummary counts readings per status.
type StatusSummary struct {
	Total   int `json:"total"`
	Normal  int `json:"normal"`
	Warning int `json:"warning"`
	Danger  int `json:"danger"`
}

// NewStatusSummary creates a StatusSummary from a list of readings.
func NewStatusSummary(readings []*Reading) *StatusSummary {
	summary := &StatusSummary{}
	for _, r := range readings {
		if r == nil {
			continue
		}
		summary.Total++
		switch r.Status {
		case StatusNormal:
			summary.Normal++
		case StatusWarning:
			summary.Warning++
		case StatusDanger:
			summary.Danger++
		}
	}
	return summary
}
