package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ipal-monitor/internal/service"
)

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and hidden behind a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidReading):
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid sensor data"))
	case errors.Is(err, service.ErrInvalidThreshold),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrInvalidRetention):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Not found"))
	case errors.Is(err, service.ErrDuplicateUser):
		writeJSON(w, http.StatusConflict, errorBody("Username already exists"))
	default:
		s.logger.Error().
			Err(err).
			Str("request_id", r.Header.Get(requestIDHeader)).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("Internal server error"))
	}
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}

func isAPIPath(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r) {
		writeJSON(w, http.StatusNotFound, errorBody("Endpoint not found"))
		return
	}
	http.Error(w, "Page not found", http.StatusNotFound)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("Method not allowed"))
		return
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
