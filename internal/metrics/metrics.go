// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ipal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	PanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ipal_http_panics_recovered_total",
			Help: "Total number of panics recovered in HTTP handlers",
		},
	)

	// Ingest metrics
	ReadingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipal_readings_total",
			Help: "Total number of sensor readings stored, by status",
		},
		[]string{"status"},
	)

	ReadingsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ipal_readings_rejected_total",
			Help: "Total number of sensor readings rejected by validation",
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipal_alerts_total",
			Help: "Total number of alerts raised",
		},
		[]string{"parameter", "severity"},
	)

	// LastReading holds the most recent value per parameter.
	LastReading = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ipal_last_reading",
			Help: "Most recent sensor value per parameter",
		},
		[]string{"parameter"},
	)

	// DeviceOnline is 1 while the sensor device is online.
	DeviceOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ipal_device_online",
			Help: "Whether the sensor device is online (1) or offline (0)",
		},
	)

	// Live update metrics
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ipal_websocket_clients",
			Help: "Number of connected dashboard WebSocket clients",
		},
	)

	WebSocketDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ipal_websocket_dropped_total",
			Help: "Total number of slow WebSocket clients disconnected",
		},
	)

	// Backend metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipal_cache_operations_total",
			Help: "Total number of Redis cache operations",
		},
		[]string{"operation", "status"}, // status: hit, miss, ok, error
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipal_events_published_total",
			Help: "Total number of reading events published to Kafka",
		},
		[]string{"status"}, // status: success, failed
	)

	RowsPurged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ipal_rows_purged_total",
			Help: "Total number of rows removed by data retention",
		},
		[]string{"table"},
	)
)

// SetDeviceOnline updates the device gauge.
func SetDeviceOnline(online bool) {
	if online {
		DeviceOnline.Set(1)
		return
	}
	DeviceOnline.Set(0)
}
