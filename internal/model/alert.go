// Package model provides data models for the water quality monitor.
package model

import "time"

// Severity represents the severity of a threshold breach.
type Severity string

const (
	SeverityWarning Severity = "warning" // peringatan
	SeverityDanger  Severity = "danger"  // bahaya
)

// AlertDraft is an evaluated threshold breach that has not been persisted yet.
// Its JSON form is the one pushed to live dashboards.
type AlertDraft struct {
	Parameter string   `json:"parameter"` // label, e.g. "pH"
	Value     float64  `json:"value"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}

// Alert represents a persisted threshold violation.
type Alert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Parameter string    `gorm:"size:50;not null" json:"parameter"`
	Value     float64   `gorm:"not null" json:"value"`
	Message   string    `gorm:"size:200;not null" json:"message"`
	Severity  Severity  `gorm:"size:20;not null" json:"severity"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
}

// TableName keeps the table name used by earlier deployments.
func (Alert) TableName() string {
	return "alert"
}

// NewAlert creates an Alert from a draft at the given time.
func NewAlert(draft AlertDraft, at time.Time) *Alert {
	return &Alert{
		Timestamp: at,
		Parameter: draft.Parameter,
		Value:     draft.Value,
		Message:   draft.Message,
		Severity:  draft.Severity,
	}
}

// IsWarning returns true if this alert is at warning severity.
func (a *Alert) IsWarning() bool {
	return a.Severity == SeverityWarning
}

// IsDanger returns true if this alert is at danger severity.
func (a *Alert) IsDanger() bool {
	return a.Severity == SeverityDanger
}

// AlertSummary provides aggregated alert statistics.
type AlertSummary struct {
	TotalAlerts  int `json:"total_alerts"`
	WarningCount int `json:"warning_count"`
	DangerCount  int `json:"danger_count"`
	UnreadCount  int `json:"unread_count"`
}

// NewAlertSummary creates a new AlertSummary from a list of alerts.
func NewAlertSummary(alerts []*Alert) *AlertSummary {
	summary := &AlertSummary{}
	for _, alert := range alerts {
		if alert == nil {
			continue
		}
		summary.TotalAlerts++
		switch alert.Severity {
		case SeverityWarning:
			summary.WarningCount++
		case SeverityDanger:
			summary.DangerCount++
		}
		if !alert.IsRead {
			summary.UnreadCount++
		}
	}
	return summary
}
