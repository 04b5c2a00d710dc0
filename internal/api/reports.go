package api

import (
	"fmt"
	"net/http"
	"strings"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/report"
)

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "excel"
	}
	writer, err := s.Registry.Get(format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = model.PeriodToday
	}

	rep, err := s.Reports.Build(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := report.Filename(s.ReportFilename, sanitizeFilename(period), rep.GeneratedAt, writer)
	w.Header().Set("Content-Type", writer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// Headers are already out, so a render failure can only be logged.
	if err := writer.Render(rep, w); err != nil {
		s.logger.Error().Err(err).Str("format", writer.Format()).Msg("failed to render report")
	}
}

// sanitizeFilename keeps period names safe for a Content-Disposition header.
func sanitizeFilename(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, v)
}
