// Package service provides business logic services for the water quality monitor.
package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"ipal-monitor/internal/model"
)

// dangerPHDeviation is how far from neutral (7) a pH breach must be to count as danger.
const dangerPHDeviation = 2.0

// EvaluationResult contains the outcome of evaluating one reading.
type EvaluationResult struct {
	Status model.Status       `json:"status"`
	Alerts []model.AlertDraft `json:"alerts"`
}

// Evaluator performs threshold evaluation on sensor readings.
type Evaluator struct {
	logger zerolog.Logger
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		logger: logger.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate checks a reading against the thresholds. Parameters without a
// threshold are skipped. Alerts are returned in pH, temperature, TDS order.
func (e *Evaluator) Evaluate(reading *model.Reading, thresholds model.ThresholdSet) *EvaluationResult {
	result := &EvaluationResult{
		Status: model.StatusNormal,
		Alerts: make([]model.AlertDraft, 0),
	}

	if reading == nil {
		return result
	}

	for _, p := range model.Parameters {
		threshold := thresholds.Get(p)
		if threshold == nil {
			continue
		}

		draft := e.evaluateParameter(p, reading.Value(p), threshold)
		if draft == nil {
			continue
		}

		result.Alerts = append(result.Alerts, *draft)
		result.Status = raiseStatus(result.Status, draft.Severity)
	}

	e.logger.Debug().
		Float64("ph", reading.PH).
		Float64("temperature", reading.Temperature).
		Float64("tds", reading.TDS).
		Str("status", string(result.Status)).
		Int("alerts", len(result.Alerts)).
		Msg("reading evaluated")

	return result
}

// evaluateParameter returns an alert draft when value breaches the threshold.
// Only pH has a lower limit; temperature and TDS alert above max only.
func (e *Evaluator) evaluateParameter(p model.Parameter, value float64, t *model.Threshold) *model.AlertDraft {
	switch p {
	case model.ParameterPH:
		if !t.Below(value) && !t.Above(value) {
			return nil
		}
		severity := model.SeverityWarning
		if math.Abs(value-7) > dangerPHDeviation {
			severity = model.SeverityDanger
		}
		return &model.AlertDraft{
			Parameter: p.Label(),
			Value:     value,
			Message: fmt.Sprintf("pH %.2f diluar batas normal (%s-%s)",
				value, formatBound(t.MinValue, "-∞"), formatBound(t.MaxValue, "∞")),
			Severity: severity,
		}

	case model.ParameterTemperature:
		if !t.Above(value) {
			return nil
		}
		return &model.AlertDraft{
			Parameter: p.Label(),
			Value:     value,
			Message:   fmt.Sprintf("Suhu %.1f°C melebihi batas maksimal %s°C", value, formatBound(t.MaxValue, "∞")),
			Severity:  model.SeverityWarning,
		}

	case model.ParameterTDS:
		if !t.Above(value) {
			return nil
		}
		return &model.AlertDraft{
			Parameter: p.Label(),
			Value:     value,
			Message:   fmt.Sprintf("TDS %.0f ppm melebihi batas maksimal %s ppm", value, formatBound(t.MaxValue, "∞")),
			Severity:  model.SeverityWarning,
		}

	default:
		e.logger.Warn().Str("parameter", string(p)).Msg("unknown parameter")
		return nil
	}
}

// raiseStatus combines the current status with an alert severity.
// Status only ever moves up: normal -> warning -> danger.
func raiseStatus(current model.Status, severity model.Severity) model.Status {
	if severity == model.SeverityDanger {
		return model.StatusDanger
	}
	if current == model.StatusNormal {
		return model.StatusWarning
	}
	return current
}

// formatBound renders a limit like a float literal: 6 -> "6.0", 6.5 -> "6.5".
func formatBound(v *float64, unbounded string) string {
	if v == nil {
		return unbounded
	}
	return formatLimit(*v)
}

func formatLimit(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if v != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
