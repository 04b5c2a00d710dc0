package api

import (
	"errors"
	"net/http"

	"ipal-monitor/internal/auth"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/service"
)

func (s *Server) handleListThresholds(w http.ResponseWriter, r *http.Request) {
	thresholds, err := s.Thresholds.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thresholds == nil {
		thresholds = []*model.Threshold{}
	}
	writeJSON(w, http.StatusOK, thresholds)
}

func (s *Server) handleUpsertThreshold(w http.ResponseWriter, r *http.Request) {
	var in service.ThresholdInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	changedBy := ""
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		changedBy = claims.Username
	}

	t, err := s.Thresholds.Upsert(r.Context(), in, changedBy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"threshold": t,
	})
}

func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	device, err := s.Device.Status(r.Context())
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":      string(model.DeviceOffline),
			"device_name": s.Device.DeviceName(),
		})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Query.Statistics(r.Context(), r.URL.Query().Get("period"))
	if errors.Is(err, service.ErrNoData) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No data available for this period"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}

	u, err := s.Users.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    u,
	})
}
