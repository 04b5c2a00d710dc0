package device

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipal-monitor/internal/config"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func testHTTPConfig(retries int) *config.HTTPConfig {
	return &config.HTTPConfig{
		Timeout: 2 * time.Second,
		Retry: config.RetryConfig{
			MaxRetries: retries,
			BaseDelay:  10 * time.Millisecond,
		},
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("http://localhost:5000", "", nil, zerolog.Nop())

	assert.Equal(t, "http://localhost:5000", c.baseURL)
	assert.Equal(t, 10*time.Second, c.timeout)
	assert.Equal(t, 3, c.retry.MaxRetries)
	assert.Equal(t, time.Second, c.retry.BaseDelay)
}

func TestClient_SendReading_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sensor/data", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))

		var body Reading
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, Reading{PH: 10.2, Temperature: 28.5, TDS: 450}, body)

		writeJSON(w, http.StatusOK, IngestResponse{Success: true, Status: "danger", AlertsCount: 1})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-key", testHTTPConfig(0), zerolog.Nop())
	resp, err := c.SendReading(context.Background(), Reading{PH: 10.2, Temperature: 28.5, TDS: 450})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "danger", resp.Status)
	assert.Equal(t, 1, resp.AlertsCount)
}

func TestClient_SendReading_Rejected(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid sensor data"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", testHTTPConfig(3), zerolog.Nop())
	_, err := c.SendReading(context.Background(), Reading{PH: 20})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "Invalid sensor data")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestClient_SendReading_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
			return
		}
		writeJSON(w, http.StatusOK, IngestResponse{Success: true, Status: "normal"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", testHTTPConfig(3), zerolog.Nop())
	resp, err := c.SendReading(context.Background(), Reading{PH: 7})

	require.NoError(t, err)
	assert.Equal(t, "normal", resp.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_SendReading_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, "", testHTTPConfig(0), zerolog.Nop())
	_, err := c.SendReading(context.Background(), Reading{PH: 7})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestClient_Health(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        HealthResponse
		wantHealthy bool
		wantErr     bool
	}{
		{name: "ok", status: http.StatusOK, body: HealthResponse{Status: "ok"}, wantHealthy: true},
		{name: "database down", status: http.StatusServiceUnavailable, body: HealthResponse{Status: "unavailable", Checks: map[string]string{"database": "sql: database is closed"}}},
		{name: "not found", status: http.StatusNotFound, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/healthz", r.URL.Path)
				writeJSON(w, tt.status, tt.body)
			}))
			defer server.Close()

			c := NewClient(server.URL, "", testHTTPConfig(0), zerolog.Nop())
			resp, err := c.Health(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHealthy, resp.IsHealthy())
		})
	}
}

func TestGenerator(t *testing.T) {
	t.Run("deterministic for a seed", func(t *testing.T) {
		a := NewGenerator(42, 0.2)
		b := NewGenerator(42, 0.2)
		for i := 0; i < 20; i++ {
			assert.Equal(t, a.Next(), b.Next())
		}
	})

	t.Run("no anomalies stays in normal band", func(t *testing.T) {
		g := NewGenerator(7, 0)
		for i := 0; i < 500; i++ {
			r := g.Next()
			assert.GreaterOrEqual(t, r.PH, 6.5)
			assert.LessOrEqual(t, r.PH, 8.5)
			assert.LessOrEqual(t, r.Temperature, 34.0)
			assert.LessOrEqual(t, r.TDS, 1200.0)
		}
	})

	t.Run("anomalies always leave the normal band", func(t *testing.T) {
		g := NewGenerator(7, 1)
		for i := 0; i < 100; i++ {
			r := g.Next()
			outOfBand := r.PH < 6 || r.PH > 9 || r.Temperature > 40 || r.TDS > 2000
			assert.True(t, outOfBand, "reading %+v should be anomalous", r)
		}
	})

	t.Run("readings stay within accepted ranges", func(t *testing.T) {
		g := NewGenerator(99, 0.5)
		for i := 0; i < 500; i++ {
			r := g.Next()
			assert.GreaterOrEqual(t, r.PH, 0.0)
			assert.LessOrEqual(t, r.PH, 14.0)
			assert.LessOrEqual(t, r.Temperature, 100.0)
			assert.LessOrEqual(t, r.TDS, 10000.0)
		}
	})
}
