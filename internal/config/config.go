// Package config provides configuration management for the water quality monitor.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Device     DeviceConfig     `mapstructure:"device"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Retention  RetentionConfig  `mapstructure:"retention"`
	Report     ReportConfig     `mapstructure:"report"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	HTTP       HTTPConfig       `mapstructure:"http"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"` // WebSocket origins, empty allows all
	TrustProxy      bool          `mapstructure:"trust_proxy"`     // take the client address from X-Forwarded-For
}

// DatabaseConfig contains the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AuthConfig contains dashboard session settings.
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieName   string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// AdminConfig describes the account created on first start.
type AdminConfig struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Email    string `mapstructure:"email" validate:"omitempty,email"`
}

// DeviceConfig describes the sensor device.
type DeviceConfig struct {
	Name          string        `mapstructure:"name" validate:"required"`
	OfflineAfter  time.Duration `mapstructure:"offline_after"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	APIKeys       []string      `mapstructure:"api_keys"` // X-API-Key values accepted on ingest, empty disables the check
}

// ThresholdsConfig contains the default thresholds seeded into an empty database.
type ThresholdsConfig struct {
	PH          ThresholdRange `mapstructure:"ph"`
	Temperature ThresholdRange `mapstructure:"temperature"`
	TDS         ThresholdRange `mapstructure:"tds"`
}

// ThresholdRange defines the lower and upper limit of a parameter.
type ThresholdRange struct {
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
	Unit string  `mapstructure:"unit"`
}

// RedisConfig enables the latest-reading cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0,lte=15"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// KafkaConfig enables reading event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// RetentionConfig controls automatic purging of old readings and alerts.
type RetentionConfig struct {
	Days     int           `mapstructure:"days" validate:"gte=0"` // 0 disables the background purge
	Interval time.Duration `mapstructure:"interval"`
}

// ReportConfig contains configurations for report generation.
type ReportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	HTMLTemplate     string   `mapstructure:"html_template"`
	Timezone         string   `mapstructure:"timezone"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// Location returns the report timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Report.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
