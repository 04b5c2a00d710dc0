// Package config provides configuration management for the water quality monitor.
package config

import (
	"strings"
	"testing"
	"time"
)

// newValidConfig creates a valid configuration for testing.
func newValidConfig() *Config {
	return &Config{
		Server:   ServerConfig{Address: ":5000"},
		Database: DatabaseConfig{Path: "ipal_monitoring.db"},
		Auth: AuthConfig{
			JWTSecret:  "0123456789abcdef",
			SessionTTL: 24 * time.Hour,
			CookieName: "ipal_session",
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
			Email:    "admin@rsmatapwt.com",
		},
		Device: DeviceConfig{
			Name:          "ESP32-IPAL-01",
			OfflineAfter:  5 * time.Minute,
			CheckInterval: 30 * time.Second,
		},
		Thresholds: ThresholdsConfig{
			PH:          ThresholdRange{Min: 6, Max: 9, Unit: "pH"},
			Temperature: ThresholdRange{Min: 0, Max: 30, Unit: "°C"},
			TDS:         ThresholdRange{Min: 0, Max: 2000, Unit: "ppm"},
		},
		Report: ReportConfig{
			OutputDir: "./reports",
			Formats:   []string{"excel", "html"},
			Timezone:  "Asia/Jakarta",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{
			Retry: RetryConfig{MaxRetries: 3, BaseDelay: time.Second},
		},
	}
}

// hasField reports whether err contains a validation error for field.
func hasField(err error, field string) bool {
	verrs, ok := err.(ValidationErrors)
	if !ok {
		return false
	}
	for _, e := range verrs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(newValidConfig()); err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "auth.jwtsecret"},
		{"missing address", func(c *Config) { c.Server.Address = "" }, "server.address"},
		{"bad admin email", func(c *Config) { c.Admin.Email = "not-an-email" }, "admin.email"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad report format", func(c *Config) { c.Report.Formats = []string{"pdf"} }, "report.formats[0]"},
		{"redis db out of range", func(c *Config) { c.Redis.DB = 16 }, "redis.db"},
		{"too many retries", func(c *Config) { c.HTTP.Retry.MaxRetries = 11 }, "http.retry.maxretries"},
		{"negative retention", func(c *Config) { c.Retention.Days = -1 }, "retention.days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() should return error")
			}
			if !hasField(err, tt.field) {
				t.Errorf("Validate() error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestValidate_ThresholdOrder(t *testing.T) {
	cfg := newValidConfig()
	cfg.Thresholds.TDS = ThresholdRange{Min: 3000, Max: 2000}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error when min >= max")
	}
	if !hasField(err, "thresholds.tds") {
		t.Errorf("Validate() error = %v, want thresholds.tds", err)
	}
	if !strings.Contains(err.Error(), "must be less than") {
		t.Errorf("error message = %v, want threshold order message", err)
	}
}

func TestValidate_PHOutOfScale(t *testing.T) {
	cfg := newValidConfig()
	cfg.Thresholds.PH = ThresholdRange{Min: 6, Max: 15}

	if err := Validate(cfg); !hasField(err, "thresholds.ph") {
		t.Errorf("Validate() error = %v, want thresholds.ph", err)
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = "Mars/Olympus"

	if err := Validate(cfg); !hasField(err, "report.timezone") {
		t.Errorf("Validate() error = %v, want report.timezone", err)
	}
}

func TestValidate_Device(t *testing.T) {
	cfg := newValidConfig()
	cfg.Device.OfflineAfter = 0
	cfg.Device.CheckInterval = 0

	err := Validate(cfg)
	if !hasField(err, "device.offline_after") {
		t.Errorf("Validate() error = %v, want device.offline_after", err)
	}
	if !hasField(err, "device.check_interval") {
		t.Errorf("Validate() error = %v, want device.check_interval", err)
	}
}

func TestValidate_KafkaTopic(t *testing.T) {
	cfg := newValidConfig()
	cfg.Kafka.Brokers = []string{"localhost:9092"}

	if err := Validate(cfg); !hasField(err, "kafka.topic") {
		t.Errorf("Validate() error = %v, want kafka.topic", err)
	}

	cfg.Kafka.Topic = "ipal.readings"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var empty ValidationErrors
	if empty.Error() != "" {
		t.Errorf("empty Error() = %q, want empty", empty.Error())
	}

	errs := ValidationErrors{
		{Field: "auth.jwtsecret", Message: "this field is required"},
	}
	want := "config validation failed:\n  - auth.jwtsecret: this field is required\n"
	if errs.Error() != want {
		t.Errorf("Error() = %q, want %q", errs.Error(), want)
	}
}

func TestFormatFieldName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Config.Auth.JWTSecret", "auth.jwtsecret"},
		{"Config.HTTP.Retry.MaxRetries", "http.retry.maxretries"},
		{"Single", "single"},
	}
	for _, tt := range tests {
		if got := formatFieldName(tt.input); got != tt.want {
			t.Errorf("formatFieldName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
