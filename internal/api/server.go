// Package api wires the HTTP surface of the monitor: dashboard pages,
// the JSON API, the WebSocket endpoint and the operational endpoints.
package api

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ipal-monitor/internal/auth"
	"ipal-monitor/internal/hub"
	"ipal-monitor/internal/model"
	"ipal-monitor/internal/report"
	"ipal-monitor/internal/service"
)

// Pinger is a backend checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds everything the HTTP layer calls into.
type Deps struct {
	Auth       *auth.Manager
	Hub        *hub.Hub
	Ingest     *service.IngestService
	Query      *service.QueryService
	Thresholds *service.ThresholdService
	Device     *service.DeviceService
	Users      *service.UserService
	Retention  *service.RetentionService
	Reports    *service.ReportService
	Registry   *report.Registry

	// ReportFilename is the file name template of exported reports.
	ReportFilename string

	// Checks are pinged by /healthz, keyed by backend name.
	Checks map[string]Pinger

	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a reverse proxy that sets them.
	TrustProxy bool
}

// Server serves the dashboard and its API.
type Server struct {
	Deps
	pages  *template.Template
	logger zerolog.Logger
}

// NewServer parses the embedded page templates and returns a Server.
func NewServer(deps Deps, logger zerolog.Logger) (*Server, error) {
	pages, err := template.ParseFS(webFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return &Server{
		Deps:   deps,
		pages:  pages,
		logger: logger.With().Str("component", "http").Logger(),
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	if s.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	r.Get("/", s.handleIndex)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	// The device authenticates with an API key, not a session.
	r.With(s.Auth.RequireAPIKey).Post("/api/sensor/data", s.handleSensorData)

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireLogin)

		r.Get("/dashboard", s.handlePage("dashboard.html"))
		r.Get("/history", s.handlePage("history.html"))
		r.Get("/reports", s.handlePage("reports.html"))
		r.Get("/settings", s.handleSettings)
		r.Get("/ws", s.Hub.ServeWS)

		r.Get("/api/sensor/current", s.handleCurrent)
		r.Get("/api/sensor/history", s.handleHistory)
		r.With(auth.RequireRole(model.RoleAdmin)).Delete("/api/sensor/history", s.handlePurge)

		r.Get("/api/alerts", s.handleAlerts)
		r.Put("/api/alerts/{id}/read", s.handleMarkAlertRead)

		r.Get("/api/thresholds", s.handleListThresholds)
		r.With(auth.RequireRole(model.RoleAdmin, model.RoleOperator)).Post("/api/thresholds", s.handleUpsertThreshold)

		r.Get("/api/device/status", s.handleDeviceStatus)
		r.Get("/api/statistics", s.handleStatistics)
		r.Get("/api/reports/export", s.handleExportReport)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(model.RoleAdmin))
			r.Get("/api/users", s.handleListUsers)
			r.Post("/api/users", s.handleCreateUser)
		})
	})

	return r
}
