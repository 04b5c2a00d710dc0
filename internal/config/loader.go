// Package config provides configuration management for the water quality monitor.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: IPAL_<SECTION>_<KEY> (e.g., IPAL_AUTH_JWT_SECRET)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("IPAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trust_proxy", false)

	v.SetDefault("database.path", "ipal_monitoring.db")

	// Auth; the secret has an empty default so IPAL_AUTH_JWT_SECRET is picked up
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "ipal_session")
	v.SetDefault("auth.cookie_secure", false)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "admin123")
	v.SetDefault("admin.email", "admin@rsmatapwt.com")

	// Device
	v.SetDefault("device.name", "ESP32-IPAL-01")
	v.SetDefault("device.offline_after", 5*time.Minute)
	v.SetDefault("device.check_interval", 30*time.Second)
	v.SetDefault("device.api_keys", []string{})

	// Thresholds defaults - baku mutu limbah cair rumah sakit
	v.SetDefault("thresholds.ph.min", 6.0)
	v.SetDefault("thresholds.ph.max", 9.0)
	v.SetDefault("thresholds.ph.unit", "pH")
	v.SetDefault("thresholds.temperature.min", 0.0)
	v.SetDefault("thresholds.temperature.max", 30.0)
	v.SetDefault("thresholds.temperature.unit", "°C")
	v.SetDefault("thresholds.tds.min", 0.0)
	v.SetDefault("thresholds.tds.max", 2000.0)
	v.SetDefault("thresholds.tds.unit", "ppm")

	// Optional backends
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "ipal.readings")
	v.SetDefault("kafka.write_timeout", 5*time.Second)

	v.SetDefault("retention.days", 0)
	v.SetDefault("retention.interval", 1*time.Hour)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{"excel", "html"})
	v.SetDefault("report.filename_template", "ipal_report_{{.Period}}_{{.Date}}")
	v.SetDefault("report.timezone", "Asia/Jakarta")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP client defaults
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
