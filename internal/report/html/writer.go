// Package html provides HTML report generation for the water quality monitor.
// It implements the report.ReportWriter interface to generate standalone
// .html files with the summary, statistics, readings and alerts of a period.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ipal-monitor/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const timeLayout = "2006-01-02 15:04:05"

// Writer implements report.ReportWriter for HTML format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title         string
	DeviceName    string
	Period        string
	StartDate     string
	EndDate       string
	GeneratedAt   string
	Duration      string
	StatusSummary *model.StatusSummary
	AlertSummary  *model.AlertSummary
	HasData       bool
	Statistics    []*StatisticData
	Thresholds    []*ThresholdData
	Readings      []*ReadingData
	Alerts        []*AlertData
	Version       string
}

// StatisticData is one row of the statistics table.
type StatisticData struct {
	Parameter string
	Unit      string
	Avg       string
	Min       string
	Max       string
}

// ThresholdData is one row of the thresholds table.
type ThresholdData struct {
	Parameter string
	Min       string
	Max       string
	Unit      string
}

// ReadingData represents a reading formatted for template rendering.
type ReadingData struct {
	Timestamp   string
	PH          string
	Temperature string
	TDS         string
	Status      string
	StatusClass string
}

// AlertData represents alert data formatted for template rendering.
type AlertData struct {
	Timestamp  string
	Parameter  string
	Value      string
	Level      string
	LevelClass string
	Message    string
	IsRead     bool
}

// NewWriter creates a new HTML report writer.
// If timezone is nil, it defaults to Asia/Jakarta.
// If templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, templatePath string) *Writer {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Jakarta")
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Extension returns the file extension of HTML reports.
func (w *Writer) Extension() string {
	return ".html"
}

// ContentType returns the MIME type of HTML reports.
func (w *Writer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Write generates an HTML report and saves it to outputPath.
func (w *Writer) Write(r *model.Report, outputPath string) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), w.Extension()) {
		outputPath = outputPath + w.Extension()
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return w.Render(r, file)
}

// Render generates an HTML report and writes it to out.
func (w *Writer) Render(r *model.Report, out io.Writer) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	if err := tmpl.Execute(out, w.prepareTemplateData(r)); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func (w *Writer) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"statusClass": statusClass,
		"alertClass":  severityClass,
	}

	// Try user-defined template first
	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).Funcs(funcMap).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
		// User template not found, fall through to default
	}

	tmpl, err := template.New("default.html").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/default.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

func (w *Writer) prepareTemplateData(r *model.Report) *TemplateData {
	data := &TemplateData{
		Title:         "Laporan Kualitas Air IPAL",
		DeviceName:    r.DeviceName,
		Period:        r.Period,
		StartDate:     r.StartDate.In(w.timezone).Format(timeLayout),
		EndDate:       r.EndDate.In(w.timezone).Format(timeLayout),
		GeneratedAt:   r.GeneratedAt.In(w.timezone).Format(timeLayout),
		Duration:      formatDuration(r.Duration),
		StatusSummary: r.StatusSummary,
		AlertSummary:  r.AlertSummary,
		Version:       r.Version,
	}
	if data.StatusSummary == nil {
		data.StatusSummary = model.NewStatusSummary(r.Readings)
	}
	if data.AlertSummary == nil {
		data.AlertSummary = model.NewAlertSummary(r.Alerts)
	}

	units := make(map[model.Parameter]string, len(r.Thresholds))
	for _, t := range r.Thresholds {
		units[t.Parameter] = t.Unit
		data.Thresholds = append(data.Thresholds, &ThresholdData{
			Parameter: t.Parameter.Label(),
			Min:       formatBound(t.MinValue),
			Max:       formatBound(t.MaxValue),
			Unit:      t.Unit,
		})
	}

	if r.Statistics != nil && r.Statistics.DataPoints > 0 {
		data.HasData = true
		for _, p := range model.Parameters {
			stats := r.Statistics.For(p)
			data.Statistics = append(data.Statistics, &StatisticData{
				Parameter: p.Label(),
				Unit:      units[p],
				Avg:       formatValue(p, stats.Avg),
				Min:       formatValue(p, stats.Min),
				Max:       formatValue(p, stats.Max),
			})
		}
	}

	data.Readings = make([]*ReadingData, 0, len(r.Readings))
	for _, reading := range r.Readings {
		data.Readings = append(data.Readings, &ReadingData{
			Timestamp:   reading.Timestamp.In(w.timezone).Format(timeLayout),
			PH:          formatValue(model.ParameterPH, reading.PH),
			Temperature: formatValue(model.ParameterTemperature, reading.Temperature),
			TDS:         formatValue(model.ParameterTDS, reading.TDS),
			Status:      statusText(reading.Status),
			StatusClass: statusClass(reading.Status),
		})
	}

	data.Alerts = w.convertAlerts(r.Alerts)
	return data
}

func (w *Writer) convertAlerts(alerts []*model.Alert) []*AlertData {
	sorted := make([]*model.Alert, len(alerts))
	copy(sorted, alerts)

	// Danger first, newest first within a severity
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return severityPriority(sorted[i].Severity) > severityPriority(sorted[j].Severity)
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	result := make([]*AlertData, 0, len(sorted))
	for _, alert := range sorted {
		result = append(result, &AlertData{
			Timestamp:  alert.Timestamp.In(w.timezone).Format(timeLayout),
			Parameter:  alert.Parameter,
			Value:      fmt.Sprintf("%g", alert.Value),
			Level:      severityText(alert.Severity),
			LevelClass: severityClass(alert.Severity),
			Message:    alert.Message,
			IsRead:     alert.IsRead,
		})
	}
	return result
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1f detik", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1f menit", d.Minutes())
	}
	return fmt.Sprintf("%.1f jam", d.Hours())
}

func formatValue(p model.Parameter, v float64) string {
	switch p {
	case model.ParameterPH:
		return fmt.Sprintf("%.2f", v)
	case model.ParameterTemperature:
		return fmt.Sprintf("%.1f", v)
	case model.ParameterTDS:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func statusText(status model.Status) string {
	switch status {
	case model.StatusNormal:
		return "Normal"
	case model.StatusWarning:
		return "Peringatan"
	case model.StatusDanger:
		return "Bahaya"
	default:
		return "Tidak diketahui"
	}
}

func statusClass(status model.Status) string {
	switch status {
	case model.StatusNormal:
		return "status-normal"
	case model.StatusWarning:
		return "status-warning"
	case model.StatusDanger:
		return "status-danger"
	default:
		return ""
	}
}

func severityText(s model.Severity) string {
	switch s {
	case model.SeverityWarning:
		return "Peringatan"
	case model.SeverityDanger:
		return "Bahaya"
	default:
		return "Tidak diketahui"
	}
}

func severityClass(s model.Severity) string {
	switch s {
	case model.SeverityWarning:
		return "alert-warning"
	case model.SeverityDanger:
		return "alert-danger"
	default:
		return ""
	}
}

func severityPriority(s model.Severity) int {
	switch s {
	case model.SeverityDanger:
		return 2
	case model.SeverityWarning:
		return 1
	default:
		return 0
	}
}
