package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Threshold Tests
// ============================================================================

func TestThreshold_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		threshold *Threshold
		value     float64
		wantBelow bool
		wantAbove bool
	}{
		{
			name:      "inside range",
			threshold: &Threshold{MinValue: Float(6), MaxValue: Float(9)},
			value:     7,
		},
		{
			name:      "below min",
			threshold: &Threshold{MinValue: Float(6), MaxValue: Float(9)},
			value:     5.9,
			wantBelow: true,
		},
		{
			name:      "above max",
			threshold: &Threshold{MinValue: Float(6), MaxValue: Float(9)},
			value:     9.1,
			wantAbove: true,
		},
		{
			name:      "equal to bounds is inside",
			threshold: &Threshold{MinValue: Float(6), MaxValue: Float(6)},
			value:     6,
		},
		{
			name:      "nil bounds are unbounded",
			threshold: &Threshold{},
			value:     -1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.threshold.Below(tt.value); got != tt.wantBelow {
				t.Errorf("Below(%v) = %v, want %v", tt.value, got, tt.wantBelow)
			}
			if got := tt.threshold.Above(tt.value); got != tt.wantAbove {
				t.Errorf("Above(%v) = %v, want %v", tt.value, got, tt.wantAbove)
			}
		})
	}
}

func TestThresholdSet_Get(t *testing.T) {
	set := NewThresholdSet([]*Threshold{
		{Parameter: ParameterPH, MinValue: Float(6)},
		nil,
	})

	if set.Get(ParameterPH) == nil {
		t.Error("Get(ph) should return the threshold")
	}
	if set.Get(ParameterTDS) != nil {
		t.Error("Get(tds) should be nil when not configured")
	}

	var empty ThresholdSet
	if empty.Get(ParameterPH) != nil {
		t.Error("Get on a nil set should be nil")
	}
}

// ============================================================================
// Parameter / Role Tests
// ============================================================================

func TestParameter_Label(t *testing.T) {
	tests := map[Parameter]string{
		ParameterPH:          "pH",
		ParameterTemperature: "Suhu",
		ParameterTDS:         "TDS",
		"turbidity":          "turbidity",
	}
	for p, want := range tests {
		if got := p.Label(); got != want {
			t.Errorf("%q.Label() = %q, want %q", p, got, want)
		}
	}

	if Parameter("turbidity").IsValid() {
		t.Error("unknown parameter should be invalid")
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		role    Role
		valid   bool
		canEdit bool
	}{
		{RoleAdmin, true, true},
		{RoleOperator, true, true},
		{RoleViewer, true, false},
		{"root", false, false},
	}
	for _, tt := range tests {
		if got := tt.role.IsValid(); got != tt.valid {
			t.Errorf("%q.IsValid() = %v, want %v", tt.role, got, tt.valid)
		}
		if got := tt.role.CanEditThresholds(); got != tt.canEdit {
			t.Errorf("%q.CanEditThresholds() = %v, want %v", tt.role, got, tt.canEdit)
		}
	}
}

func TestUser_PasswordNotSerialised(t *testing.T) {
	data, err := json.Marshal(&User{Username: "admin", PasswordHash: "$2a$10$secret"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked: %s", data)
	}
}

// ============================================================================
// Summary Tests
// ============================================================================

func TestNewParameterStats(t *testing.T) {
	stats := NewParameterStats([]float64{6.5, 7.5, 8.5})
	if stats.Avg != 7.5 || stats.Min != 6.5 || stats.Max != 8.5 {
		t.Errorf("stats = %+v", stats)
	}

	if empty := NewParameterStats(nil); empty != (ParameterStats{}) {
		t.Errorf("empty stats = %+v, want zero value", empty)
	}
}

func TestNewStatistics(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := []*Reading{
		{PH: 7, Temperature: 25, TDS: 400},
		nil,
		{PH: 8, Temperature: 27, TDS: 600},
	}

	stats := NewStatistics(PeriodWeek, start, start.Add(7*24*time.Hour), readings)
	if stats.DataPoints != 2 {
		t.Errorf("DataPoints = %d, want 2", stats.DataPoints)
	}
	if got := stats.For(ParameterTDS).Avg; got != 500 {
		t.Errorf("TDS avg = %v, want 500", got)
	}
	if got := stats.For("turbidity"); got != (ParameterStats{}) {
		t.Errorf("unknown parameter stats = %+v", got)
	}
}

func TestSummaries(t *testing.T) {
	readings := []*Reading{
		{Status: StatusNormal},
		{Status: StatusWarning},
		{Status: StatusDanger},
		{Status: StatusDanger},
	}
	rs := NewStatusSummary(readings)
	if rs.Total != 4 || rs.Normal != 1 || rs.Warning != 1 || rs.Danger != 2 {
		t.Errorf("status summary = %+v", rs)
	}

	alerts := []*Alert{
		{Severity: SeverityWarning, IsRead: true},
		{Severity: SeverityDanger},
		nil,
	}
	as := NewAlertSummary(alerts)
	if as.TotalAlerts != 2 || as.WarningCount != 1 || as.DangerCount != 1 || as.UnreadCount != 1 {
		t.Errorf("alert summary = %+v", as)
	}
}

func TestReport_Flags(t *testing.T) {
	r := NewReport(PeriodToday, time.Now().Add(-time.Hour), time.Now())
	r.Finalize(time.Now())
	if r.HasDanger() || r.HasAlerts() {
		t.Error("empty report should have no danger and no alerts")
	}

	r.Readings = []*Reading{{Status: StatusDanger}}
	r.Alerts = []*Alert{{Severity: SeverityDanger}}
	r.Finalize(time.Now())
	if !r.HasDanger() || !r.HasAlerts() {
		t.Error("report with a danger reading should flag danger and alerts")
	}
}

func TestDeviceStatus_IsStale(t *testing.T) {
	now := time.Now()
	d := &DeviceStatus{LastSeen: now.Add(-6 * time.Minute)}
	if !d.IsStale(now, 5*time.Minute) {
		t.Error("device last seen 6m ago should be stale")
	}
	d.LastSeen = now.Add(-time.Minute)
	if d.IsStale(now, 5*time.Minute) {
		t.Error("device last seen 1m ago should not be stale")
	}
}
