package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ipal-monitor/internal/model"
	"ipal-monitor/internal/service"
)

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", service.DefaultAlertsLimit)
	unreadOnly := strings.EqualFold(r.URL.Query().Get("unread_only"), "true")

	alerts, err := s.Query.Alerts(r.Context(), limit, unreadOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []*model.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}

	err = s.Query.MarkAlertRead(r.Context(), uint(id))
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("Alert not found"))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
