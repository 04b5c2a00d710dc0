package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/service"
	"ipal-monitor/internal/store"
)

func (s *Server) handleSensorData(w http.ResponseWriter, r *http.Request) {
	var in service.ReadingInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid sensor data"))
		return
	}

	result, err := s.Ingest.Ingest(r.Context(), in, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"status":       result.Status,
		"alerts_count": result.AlertsCount,
	})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	reading, err := s.Query.Current(r.Context())
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No data available"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := service.HistoryQuery{
		Limit: intParam(r, "limit", service.DefaultHistoryLimit),
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &q.Start},
		{"end_date", &q.End},
	} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		t, err := service.ParseTime(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("Invalid date format for "+p.name))
			return
		}
		*p.dst = &t
	}

	readings, err := s.Query.History(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if readings == nil {
		readings = []*model.Reading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	days := service.DefaultRetentionDays
	if raw := r.URL.Query().Get("older_than_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("older_than_days must be a number"))
			return
		}
		days = n
	}

	result, err := s.Retention.Purge(r.Context(), days)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*store.PurgeResult
	}{true, result})
}

// clientIP strips the port from RemoteAddr, which RealIP may already have replaced.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// intParam reads a positive integer query parameter, falling back to def
// when it is missing or malformed.
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
