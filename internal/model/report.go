// Package model provides data models for the water quality monitor.
package model

import "time"

// Report is the complete data set rendered into an exported report.
type Report struct {
	// Window
	Period    string    `json:"period"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`

	DeviceName string       `json:"device_name"`
	Statistics *Statistics  `json:"statistics"`
	Thresholds []*Threshold `json:"thresholds"`

	Readings      []*Reading     `json:"readings"`
	StatusSummary *StatusSummary `json:"status_summary"`

	Alerts       []*Alert      `json:"alerts"`
	AlertSummary *AlertSummary `json:"alert_summary"`

	Version string `json:"version,omitempty"`
}

// NewReport creates an empty Report for the given window.
func NewReport(period string, start, end time.Time) *Report {
	return &Report{
		Period:      period,
		StartDate:   start,
		EndDate:     end,
		GeneratedAt: time.Now(),
		Readings:    make([]*Reading, 0),
		Alerts:      make([]*Alert, 0),
	}
}

// Finalize calculates summaries once readings and alerts have been loaded.
func (r *Report) Finalize(endTime time.Time) {
	r.Duration = endTime.Sub(r.GeneratedAt)
	r.Statistics = NewStatistics(r.Period, r.StartDate, r.EndDate, r.Readings)
	r.StatusSummary = NewStatusSummary(r.Readings)
	r.AlertSummary = NewAlertSummary(r.Alerts)
}

// HasDanger returns true if any reading in the window was in danger.
func (r *Report) HasDanger() bool {
	return r.StatusSummary != nil && r.StatusSummary.Danger > 0
}

// HasAlerts returns true if there are any alerts in the window.
func (r *Report) HasAlerts() bool {
	return len(r.Alerts) > 0
}
