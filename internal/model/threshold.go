// Package model provides data models for the water quality monitor.
package model

// Threshold holds the configured limits for one parameter.
// A nil bound means the parameter is unbounded on that side.
type Threshold struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Parameter Parameter `gorm:"size:50;uniqueIndex;not null" json:"parameter"`
	MinValue  *float64  `json:"min_value"`
	MaxValue  *float64  `json:"max_value"`
	Unit      string    `gorm:"size:20" json:"unit"`
}

// TableName keeps the table name used by earlier deployments.
func (Threshold) TableName() string {
	return "threshold"
}

// Below reports whether v is under the lower bound.
func (t *Threshold) Below(v float64) bool {
	return t.MinValue != nil && v < *t.MinValue
}

// Above reports whether v is over the upper bound.
func (t *Threshold) Above(v float64) bool {
	return t.MaxValue != nil && v > *t.MaxValue
}

// ThresholdSet indexes thresholds by parameter.
type ThresholdSet map[Parameter]*Threshold

// NewThresholdSet builds a ThresholdSet from a list of thresholds.
func NewThresholdSet(thresholds []*Threshold) ThresholdSet {
	set := make(ThresholdSet, len(thresholds))
	for _, t := range thresholds {
		if t == nil {
			continue
		}
		set[t.Parameter] = t
	}
	return set
}

// Get returns the threshold for a parameter, or nil when none is configured.
func (s ThresholdSet) Get(p Parameter) *Threshold {
	if s == nil {
		return nil
	}
	return s[p]
}

// Float returns a pointer to v, for building thresholds.
func Float(v float64) *float64 {
	return &v
}
