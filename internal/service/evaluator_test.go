package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipal-monitor/internal/model"
)

// createTestThresholds returns the default hospital wastewater thresholds.
func createTestThresholds() model.ThresholdSet {
	return model.NewThresholdSet([]*model.Threshold{
		{Parameter: model.ParameterPH, MinValue: model.Float(6), MaxValue: model.Float(9), Unit: "pH"},
		{Parameter: model.ParameterTemperature, MinValue: model.Float(0), MaxValue: model.Float(30), Unit: "°C"},
		{Parameter: model.ParameterTDS, MinValue: model.Float(0), MaxValue: model.Float(2000), Unit: "ppm"},
	})
}

func createTestEvaluator() *Evaluator {
	return NewEvaluator(zerolog.Nop())
}

// =============================================================================
// Evaluate Tests
// =============================================================================

func TestEvaluator_Evaluate_Normal(t *testing.T) {
	e := createTestEvaluator()

	result := e.Evaluate(&model.Reading{PH: 7.2, Temperature: 27.5, TDS: 850}, createTestThresholds())

	assert.Equal(t, model.StatusNormal, result.Status)
	assert.Empty(t, result.Alerts)
}

func TestEvaluator_Evaluate_PH(t *testing.T) {
	tests := []struct {
		name     string
		ph       float64
		severity model.Severity
		status   model.Status
		message  string
	}{
		{"slightly acidic", 5.5, model.SeverityWarning, model.StatusWarning, "pH 5.50 diluar batas normal (6.0-9.0)"},
		{"strongly acidic", 4.2, model.SeverityDanger, model.StatusDanger, "pH 4.20 diluar batas normal (6.0-9.0)"},
		{"strongly alkaline", 9.5, model.SeverityDanger, model.StatusDanger, "pH 9.50 diluar batas normal (6.0-9.0)"},
		{"exactly two from neutral", 5.0, model.SeverityWarning, model.StatusWarning, "pH 5.00 diluar batas normal (6.0-9.0)"},
	}

	e := createTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Evaluate(&model.Reading{PH: tt.ph, Temperature: 25, TDS: 500}, createTestThresholds())

			require.Len(t, result.Alerts, 1)
			assert.Equal(t, "pH", result.Alerts[0].Parameter)
			assert.Equal(t, tt.ph, result.Alerts[0].Value)
			assert.Equal(t, tt.severity, result.Alerts[0].Severity)
			assert.Equal(t, tt.message, result.Alerts[0].Message)
			assert.Equal(t, tt.status, result.Status)
		})
	}
}

func TestEvaluator_Evaluate_BoundariesAreInclusive(t *testing.T) {
	e := createTestEvaluator()

	result := e.Evaluate(&model.Reading{PH: 9.0, Temperature: 30.0, TDS: 2000}, createTestThresholds())
	assert.Equal(t, model.StatusNormal, result.Status)
	assert.Empty(t, result.Alerts)

	result = e.Evaluate(&model.Reading{PH: 6.0, Temperature: 0, TDS: 0}, createTestThresholds())
	assert.Equal(t, model.StatusNormal, result.Status)
}

func TestEvaluator_Evaluate_TemperatureAndTDS(t *testing.T) {
	e := createTestEvaluator()

	result := e.Evaluate(&model.Reading{PH: 7.0, Temperature: 32.35, TDS: 2500.4}, createTestThresholds())

	assert.Equal(t, model.StatusWarning, result.Status)
	require.Len(t, result.Alerts, 2)

	assert.Equal(t, "Suhu", result.Alerts[0].Parameter)
	assert.Equal(t, "Suhu 32.4°C melebihi batas maksimal 30.0°C", result.Alerts[0].Message)
	assert.Equal(t, model.SeverityWarning, result.Alerts[0].Severity)

	assert.Equal(t, "TDS", result.Alerts[1].Parameter)
	assert.Equal(t, "TDS 2500 ppm melebihi batas maksimal 2000.0 ppm", result.Alerts[1].Message)
	assert.Equal(t, model.SeverityWarning, result.Alerts[1].Severity)
}

func TestEvaluator_Evaluate_NoLowerCheckForTemperatureAndTDS(t *testing.T) {
	e := createTestEvaluator()
	thresholds := model.NewThresholdSet([]*model.Threshold{
		{Parameter: model.ParameterTemperature, MinValue: model.Float(10), MaxValue: model.Float(30)},
		{Parameter: model.ParameterTDS, MinValue: model.Float(100), MaxValue: model.Float(2000)},
	})

	result := e.Evaluate(&model.Reading{PH: 7, Temperature: -5, TDS: 0}, thresholds)

	assert.Equal(t, model.StatusNormal, result.Status)
	assert.Empty(t, result.Alerts)
}

func TestEvaluator_Evaluate_DangerNotLowered(t *testing.T) {
	e := createTestEvaluator()

	result := e.Evaluate(&model.Reading{PH: 3.0, Temperature: 40, TDS: 5000}, createTestThresholds())

	assert.Equal(t, model.StatusDanger, result.Status)
	require.Len(t, result.Alerts, 3)
	assert.Equal(t, []string{"pH", "Suhu", "TDS"}, []string{
		result.Alerts[0].Parameter, result.Alerts[1].Parameter, result.Alerts[2].Parameter,
	})
}

func TestEvaluator_Evaluate_MissingThresholds(t *testing.T) {
	e := createTestEvaluator()

	result := e.Evaluate(&model.Reading{PH: 1, Temperature: 99, TDS: 9999}, nil)
	assert.Equal(t, model.StatusNormal, result.Status)
	assert.Empty(t, result.Alerts)

	onlyTDS := model.NewThresholdSet([]*model.Threshold{
		{Parameter: model.ParameterTDS, MaxValue: model.Float(2000)},
	})
	result = e.Evaluate(&model.Reading{PH: 1, Temperature: 99, TDS: 9999}, onlyTDS)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "TDS", result.Alerts[0].Parameter)
}

func TestEvaluator_Evaluate_UnboundedSide(t *testing.T) {
	e := createTestEvaluator()
	thresholds := model.NewThresholdSet([]*model.Threshold{
		{Parameter: model.ParameterPH, MinValue: model.Float(6.5)},
	})

	result := e.Evaluate(&model.Reading{PH: 13}, thresholds)
	assert.Empty(t, result.Alerts)

	result = e.Evaluate(&model.Reading{PH: 6.0}, thresholds)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "pH 6.00 diluar batas normal (6.5-∞)", result.Alerts[0].Message)
}

func TestEvaluator_Evaluate_NilReading(t *testing.T) {
	result := createTestEvaluator().Evaluate(nil, createTestThresholds())
	assert.Equal(t, model.StatusNormal, result.Status)
	assert.Empty(t, result.Alerts)
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestRaiseStatus(t *testing.T) {
	assert.Equal(t, model.StatusWarning, raiseStatus(model.StatusNormal, model.SeverityWarning))
	assert.Equal(t, model.StatusDanger, raiseStatus(model.StatusWarning, model.SeverityDanger))
	assert.Equal(t, model.StatusDanger, raiseStatus(model.StatusDanger, model.SeverityWarning))
}

func TestFormatLimit(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{6, "6.0"},
		{9, "9.0"},
		{6.5, "6.5"},
		{2000, "2000.0"},
		{0, "0.0"},
		{-10, "-10.0"},
		{0.25, "0.25"},
		{1e16, "1e+16"},
		{0.00001, "1e-05"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatLimit(tt.in), "formatLimit(%v)", tt.in)
	}
}
