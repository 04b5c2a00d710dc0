// Package model provides data models for the water quality monitor.
package model

import (
	"math"
	"time"
)

// Period names accepted by the statistics endpoint.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodDay   = "day" // fallback for unknown periods
)

// ParameterStats holds aggregate values for one parameter.
type ParameterStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewParameterStats aggregates values. It returns a zero value for an empty slice.
func NewParameterStats(values []float64) ParameterStats {
	if len(values) == 0 {
		return ParameterStats{}
	}
	stats := ParameterStats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range values {
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	stats.Avg = sum / float64(len(values))
	return stats
}

// Statistics summarises readings over a period.
type Statistics struct {
	Period      string         `json:"period"`
	DataPoints  int            `json:"data_points"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	PH          ParameterStats `json:"ph"`
	Temperature ParameterStats `json:"temperature"`
	TDS         ParameterStats `json:"tds"`
}

// NewStatistics computes statistics for the given readings.
func NewStatistics(period string, start, end time.Time, readings []*Reading) *Statistics {
	ph := make([]float64, 0, len(readings))
	temp := make([]float64, 0, len(readings))
	tds := make([]float64, 0, len(readings))
	for _, r := range readings {
		if r == nil {
			continue
		}
		ph = append(ph, r.PH)
		temp = append(temp, r.Temperature)
		tds = append(tds, r.TDS)
	}

	return &Statistics{
		Period:      period,
		DataPoints:  len(ph),
		StartDate:   start,
		EndDate:     end,
		PH:          NewParameterStats(ph),
		Temperature: NewParameterStats(temp),
		TDS:         NewParameterStats(tds),
	}
}

// For returns the stats of one parameter.
func (s *Statistics) For(p Parameter) ParameterStats {
	switch p {
	case ParameterPH:
		return s.PH
	case ParameterTemperature:
		return s.Temperature
	case ParameterTDS:
		return s.TDS
	default:
		return ParameterStats{}
	}
}
