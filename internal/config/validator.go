// Package config provides configuration management for the water quality monitor.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "auth.jwt_secret")
	Tag     string      // Validation tag that failed (e.g., "required", "min")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("timezone", validateTimezone)
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	validationErrors = append(validationErrors, validateThresholds(cfg)...)
	validationErrors = append(validationErrors, validateTimezoneConfig(cfg)...)
	validationErrors = append(validationErrors, validateDevice(cfg)...)
	validationErrors = append(validationErrors, validateKafka(cfg)...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateTimezone is a custom validator for timezone strings.
func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return true
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// validateThresholds checks that every default range has min below max.
func validateThresholds(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	ranges := []struct {
		name string
		r    ThresholdRange
	}{
		{"thresholds.ph", cfg.Thresholds.PH},
		{"thresholds.temperature", cfg.Thresholds.Temperature},
		{"thresholds.tds", cfg.Thresholds.TDS},
	}

	for _, tr := range ranges {
		if tr.r.Min >= tr.r.Max {
			errors = append(errors, &ValidationError{
				Field:   tr.name,
				Tag:     "threshold_order",
				Value:   fmt.Sprintf("min=%v, max=%v", tr.r.Min, tr.r.Max),
				Message: fmt.Sprintf("min threshold (%.2f) must be less than max threshold (%.2f)", tr.r.Min, tr.r.Max),
			})
		}
	}

	if cfg.Thresholds.PH.Min < 0 || cfg.Thresholds.PH.Max > 14 {
		errors = append(errors, &ValidationError{
			Field:   "thresholds.ph",
			Tag:     "ph_range",
			Value:   fmt.Sprintf("min=%v, max=%v", cfg.Thresholds.PH.Min, cfg.Thresholds.PH.Max),
			Message: "pH thresholds must lie within 0-14",
		})
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// validateDevice validates device timing settings.
func validateDevice(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Device.OfflineAfter <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "device.offline_after",
			Tag:     "positive",
			Value:   cfg.Device.OfflineAfter,
			Message: "offline_after must be a positive duration",
		})
	}

	if cfg.Device.CheckInterval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "device.check_interval",
			Tag:     "positive",
			Value:   cfg.Device.CheckInterval,
			Message: "check_interval must be a positive duration",
		})
	}

	return errors
}

// validateKafka requires a topic once brokers are configured.
func validateKafka(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if !cfg.Kafka.Enabled() {
		return errors
	}

	if cfg.Kafka.Topic == "" {
		errors = append(errors, &ValidationError{
			Field:   "kafka.topic",
			Tag:     "required_when_enabled",
			Value:   "",
			Message: "topic is required when kafka brokers are configured",
		})
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Auth.JWTSecret" -> "auth.jwtsecret"
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("value must be at least %s characters long", fe.Param())
	case "email":
		return fmt.Sprintf("invalid email address: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "dive":
		return fmt.Sprintf("invalid value in list: %v", fe.Value())
	case "timezone":
		return fmt.Sprintf("invalid timezone: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
