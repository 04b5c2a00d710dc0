// Package device provides an HTTP client that emulates the IPAL sensor
// device, posting readings to a running monitor.
package device

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"ipal-monitor/internal/config"
)

// ErrRejected is returned when the server refuses a reading with a 4xx status.
var ErrRejected = errors.New("reading rejected")

// Client posts sensor readings to the monitor's ingest endpoint.
type Client struct {
	baseURL    string
	timeout    time.Duration
	retry      config.RetryConfig
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewClient creates a device client for the server at baseURL.
// apiKey is sent as X-API-Key when not empty.
func NewClient(baseURL, apiKey string, httpCfg *config.HTTPConfig, logger zerolog.Logger) *Client {
	timeout := 10 * time.Second
	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if httpCfg != nil {
		if httpCfg.Timeout > 0 {
			timeout = httpCfg.Timeout
		}
		retry = httpCfg.Retry
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8).
		AddRetryCondition(retryCondition)
	if apiKey != "" {
		httpClient.SetHeader("X-API-Key", apiKey)
	}

	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "device-client").Logger(),
	}
}

// retryCondition retries on transport errors and 5xx responses only.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= 500
}

// SendReading posts one reading and returns the evaluated status.
func (c *Client) SendReading(ctx context.Context, reading Reading) (*IngestResponse, error) {
	var result IngestResponse
	var apiErr ErrorResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reading).
		SetResult(&result).
		SetError(&apiErr).
		Post("/api/sensor/data")
	if err != nil {
		return nil, fmt.Errorf("failed to send reading: %w", err)
	}

	if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
		c.logger.Warn().
			Int("status_code", resp.StatusCode()).
			Str("error", apiErr.Error).
			Msg("server rejected reading")
		return nil, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode(), apiErr.Error)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	c.logger.Debug().
		Float64("ph", reading.PH).
		Float64("temperature", reading.Temperature).
		Float64("tds", reading.TDS).
		Str("status", result.Status).
		Int("alerts", result.AlertsCount).
		Msg("reading sent")

	return &result, nil
}

// Health queries /healthz. A 503 still decodes into the response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&result).
		Get("/healthz")
	if err != nil {
		return nil, fmt.Errorf("failed to check health: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return &result, nil
}
