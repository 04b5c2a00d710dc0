// Package report provides report generation for the water quality monitor.
// It defines the ReportWriter interface and a registry of the available
// output formats (Excel, HTML).
package report

import (
	"io"

	"ipal-monitor/internal/model"
)

// ReportWriter defines the interface for generating water quality reports.
type ReportWriter interface {
	// Write renders the report and saves it to outputPath. The format's
	// extension is appended when missing.
	Write(r *model.Report, outputPath string) error

	// Render streams the report to w, e.g. as an HTTP download.
	Render(r *model.Report, w io.Writer) error

	// Format returns the format identifier, "excel" or "html".
	Format() string

	// Extension returns the file extension including the leading dot.
	Extension() string

	// ContentType returns the MIME type of the rendered output.
	ContentType() string
}
