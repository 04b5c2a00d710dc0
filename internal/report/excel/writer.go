// Package excel provides Excel report generation for the water quality monitor.
// It implements the report.ReportWriter interface to generate .xlsx files
// with a summary, the sensor readings, alerts and the configured thresholds.
package excel

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ipal-monitor/internal/model"
)

const (
	// Sheet names
	sheetSummary    = "Ringkasan"
	sheetReadings   = "Data Sensor"
	sheetAlerts     = "Peringatan"
	sheetThresholds = "Ambang Batas"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg = "FFEB9C"
	colorWarningFg = "9C6500"
	colorDangerBg  = "FFC7CE"
	colorDangerFg  = "9C0006"
	colorHeaderBg  = "4472C4"
	colorHeaderFg  = "FFFFFF"
	colorNormalBg  = "C6EFCE"
	colorNormalFg  = "006100"

	timeLayout = "2006-01-02 15:04:05"
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to Asia/Jakarta.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone, _ = time.LoadLocation("Asia/Jakarta")
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Extension returns the file extension of Excel reports.
func (w *Writer) Extension() string {
	return ".xlsx"
}

// ContentType returns the MIME type of Excel reports.
func (w *Writer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write generates an Excel report and saves it to outputPath.
func (w *Writer) Write(r *model.Report, outputPath string) error {
	if !strings.HasSuffix(strings.ToLower(outputPath), w.Extension()) {
		outputPath = outputPath + w.Extension()
	}

	f, err := w.build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// Render generates an Excel report and writes it to out.
func (w *Writer) Render(r *model.Report, out io.Writer) error {
	f, err := w.build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write Excel report: %w", err)
	}
	return nil
}

func (w *Writer) build(r *model.Report) (*excelize.File, error) {
	if r == nil {
		return nil, fmt.Errorf("report is nil")
	}

	f := excelize.NewFile()

	if err := w.createSummarySheet(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := w.createReadingsSheet(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create readings sheet: %w", err)
	}
	if err := w.createAlertsSheet(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create alerts sheet: %w", err)
	}
	if err := w.createThresholdsSheet(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create thresholds sheet: %w", err)
	}

	// Sheet1 may already be gone
	_ = f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	return f, nil
}

// createSummarySheet creates the report overview worksheet.
func (w *Writer) createSummarySheet(f *excelize.File, r *model.Report) error {
	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  12,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 18,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 12,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheetSummary, "A", "A", 26)
	f.SetColWidth(sheetSummary, "B", "D", 18)

	f.MergeCell(sheetSummary, "A1", "D1")
	f.SetCellValue(sheetSummary, "A1", "Laporan Kualitas Air IPAL")
	f.SetCellStyle(sheetSummary, "A1", "D1", titleStyle)
	f.SetRowHeight(sheetSummary, 1, 30)

	status := r.StatusSummary
	if status == nil {
		status = &model.StatusSummary{}
	}
	alerts := r.AlertSummary
	if alerts == nil {
		alerts = &model.AlertSummary{}
	}

	summaryData := []struct {
		label string
		value interface{}
	}{
		{"Perangkat", r.DeviceName},
		{"Periode", r.Period},
		{"Mulai", r.StartDate.In(w.timezone).Format(timeLayout)},
		{"Selesai", r.EndDate.In(w.timezone).Format(timeLayout)},
		{"Dibuat", r.GeneratedAt.In(w.timezone).Format(timeLayout)},
		{"Durasi", formatDuration(r.Duration)},
		{"Jumlah Data", status.Total},
		{"Normal", status.Normal},
		{"Peringatan", status.Warning},
		{"Bahaya", status.Danger},
		{"Total Alert", alerts.TotalAlerts},
		{"Alert Peringatan", alerts.WarningCount},
		{"Alert Bahaya", alerts.DangerCount},
		{"Alert Belum Dibaca", alerts.UnreadCount},
	}
	if r.Version != "" {
		summaryData = append(summaryData, struct {
			label string
			value interface{}
		}{"Versi", r.Version})
	}

	row := 3
	for _, item := range summaryData {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), item.label)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), item.value)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), valueStyle)
		f.SetRowHeight(sheetSummary, row, 22)
		row++
	}

	if r.Statistics == nil || r.Statistics.DataPoints == 0 {
		return nil
	}

	// Per-parameter statistics
	row++
	for i, header := range []string{"Parameter", "Rata-rata", "Minimum", "Maksimum"} {
		cell := fmt.Sprintf("%s%d", columnName(i+1), row)
		f.SetCellValue(sheetSummary, cell, header)
		f.SetCellStyle(sheetSummary, cell, cell, headerStyle)
	}
	row++
	for _, p := range model.Parameters {
		stats := r.Statistics.For(p)
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), p.Label())
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), formatValue(p, stats.Avg))
		f.SetCellValue(sheetSummary, fmt.Sprintf("C%d", row), formatValue(p, stats.Min))
		f.SetCellValue(sheetSummary, fmt.Sprintf("D%d", row), formatValue(p, stats.Max))
		f.SetCellStyle(sheetSummary, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), valueStyle)
		row++
	}

	return nil
}

// createReadingsSheet creates the sensor readings worksheet.
func (w *Writer) createReadingsSheet(f *excelize.File, r *model.Report) error {
	if _, err := f.NewSheet(sheetReadings); err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}
	warningStyle, err := w.createWarningStyle(f)
	if err != nil {
		return err
	}
	dangerStyle, err := w.createDangerStyle(f)
	if err != nil {
		return err
	}
	normalStyle, err := w.createNormalStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Waktu", "pH", "Suhu (°C)", "TDS (ppm)", "Status"}
	colWidths := []float64{22, 10, 12, 12, 14}
	w.writeHeaderRow(f, sheetReadings, headers, colWidths, headerStyle)

	thresholds := model.NewThresholdSet(r.Thresholds)

	for i, reading := range r.Readings {
		rowStr := fmt.Sprintf("%d", i+2)

		f.SetCellValue(sheetReadings, "A"+rowStr, reading.Timestamp.In(w.timezone).Format(timeLayout))
		for j, p := range model.Parameters {
			cell := columnName(j+2) + rowStr
			f.SetCellValue(sheetReadings, cell, reading.Value(p))
			if t := thresholds.Get(p); t != nil && (t.Below(reading.Value(p)) || t.Above(reading.Value(p))) {
				f.SetCellStyle(sheetReadings, cell, cell, warningStyle)
			}
		}
		f.SetCellValue(sheetReadings, "E"+rowStr, statusText(reading.Status))

		if style := w.getStatusStyle(reading.Status, normalStyle, warningStyle, dangerStyle); style > 0 {
			f.SetCellStyle(sheetReadings, "E"+rowStr, "E"+rowStr, style)
		}
	}

	return nil
}

// createAlertsSheet creates the alerts worksheet.
func (w *Writer) createAlertsSheet(f *excelize.File, r *model.Report) error {
	if _, err := f.NewSheet(sheetAlerts); err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}
	warningStyle, err := w.createWarningStyle(f)
	if err != nil {
		return err
	}
	dangerStyle, err := w.createDangerStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Waktu", "Parameter", "Nilai", "Tingkat", "Pesan", "Dibaca"}
	colWidths := []float64{22, 12, 12, 12, 50, 10}
	w.writeHeaderRow(f, sheetAlerts, headers, colWidths, headerStyle)

	// Danger first, newest first within a severity
	alerts := make([]*model.Alert, len(r.Alerts))
	copy(alerts, r.Alerts)
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Severity != alerts[j].Severity {
			return severityPriority(alerts[i].Severity) > severityPriority(alerts[j].Severity)
		}
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})

	for i, alert := range alerts {
		rowStr := fmt.Sprintf("%d", i+2)

		f.SetCellValue(sheetAlerts, "A"+rowStr, alert.Timestamp.In(w.timezone).Format(timeLayout))
		f.SetCellValue(sheetAlerts, "B"+rowStr, alert.Parameter)
		f.SetCellValue(sheetAlerts, "C"+rowStr, alert.Value)
		f.SetCellValue(sheetAlerts, "D"+rowStr, severityText(alert.Severity))
		f.SetCellValue(sheetAlerts, "E"+rowStr, alert.Message)
		f.SetCellValue(sheetAlerts, "F"+rowStr, boolToText(alert.IsRead))

		var style int
		if alert.IsDanger() {
			style = dangerStyle
		} else if alert.IsWarning() {
			style = warningStyle
		}
		if style > 0 {
			f.SetCellStyle(sheetAlerts, "D"+rowStr, "D"+rowStr, style)
		}
	}

	return nil
}

// createThresholdsSheet lists the thresholds in effect when the report was built.
func (w *Writer) createThresholdsSheet(f *excelize.File, r *model.Report) error {
	if _, err := f.NewSheet(sheetThresholds); err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Parameter", "Minimum", "Maksimum", "Satuan"}
	colWidths := []float64{16, 12, 12, 10}
	w.writeHeaderRow(f, sheetThresholds, headers, colWidths, headerStyle)

	for i, t := range r.Thresholds {
		rowStr := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheetThresholds, "A"+rowStr, t.Parameter.Label())
		f.SetCellValue(sheetThresholds, "B"+rowStr, formatBound(t.MinValue))
		f.SetCellValue(sheetThresholds, "C"+rowStr, formatBound(t.MaxValue))
		f.SetCellValue(sheetThresholds, "D"+rowStr, t.Unit)
	}

	return nil
}

// Helper functions

func (w *Writer) writeHeaderRow(f *excelize.File, sheet string, headers []string, widths []float64, style int) {
	for i, width := range widths {
		col := columnName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	f.SetRowHeight(sheet, 1, 25)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *Writer) createHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createWarningStyle(f *excelize.File) (int, error) {
	return w.createFillStyle(f, colorWarningFg, colorWarningBg)
}

func (w *Writer) createDangerStyle(f *excelize.File) (int, error) {
	return w.createFillStyle(f, colorDangerFg, colorDangerBg)
}

func (w *Writer) createNormalStyle(f *excelize.File) (int, error) {
	return w.createFillStyle(f, colorNormalFg, colorNormalBg)
}

func (w *Writer) createFillStyle(f *excelize.File, fg, bg string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: fg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{bg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) getStatusStyle(status model.Status, normalStyle, warningStyle, dangerStyle int) int {
	switch status {
	case model.StatusDanger:
		return dangerStyle
	case model.StatusWarning:
		return warningStyle
	case model.StatusNormal:
		return normalStyle
	default:
		return 0
	}
}

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// formatDuration formats a duration in a human-readable format.
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

// statusText converts a reading status to Indonesian text.
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

// severityText converts an alert severity to Indonesian text.
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

// severityPriority returns a numeric priority for sorting (higher = more severe).
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

// formatValue formats a parameter value with the precision used in alert messages.
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

func boolToText(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}
