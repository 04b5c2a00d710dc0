package device

import (
	"math"
	"math/rand"
)

// Generator produces plausible readings as a bounded random walk around
// typical treated-effluent values, with occasional out-of-range spikes.
type Generator struct {
	rnd         *rand.Rand
	anomalyRate float64

	ph          float64
	temperature float64
	tds         float64
}

// NewGenerator creates a Generator. anomalyRate is the probability (0-1)
// that a reading carries a spike on one parameter.
func NewGenerator(seed int64, anomalyRate float64) *Generator {
	return &Generator{
		rnd:         rand.New(rand.NewSource(seed)),
		anomalyRate: math.Max(0, math.Min(1, anomalyRate)),
		ph:          7.2,
		temperature: 28,
		tds:         450,
	}
}

// Next returns the next reading.
func (g *Generator) Next() Reading {
	g.ph = clamp(g.ph+g.rnd.NormFloat64()*0.05, 6.5, 8.5)
	g.temperature = clamp(g.temperature+g.rnd.NormFloat64()*0.2, 24, 34)
	g.tds = clamp(g.tds+g.rnd.NormFloat64()*10, 200, 1200)

	r := Reading{
		PH:          round(g.ph, 2),
		Temperature: round(g.temperature, 1),
		TDS:         round(g.tds, 0),
	}

	if g.rnd.Float64() < g.anomalyRate {
		switch g.rnd.Intn(4) {
		case 0:
			r.PH = round(4+g.rnd.Float64()*1.5, 2) // acidic
		case 1:
			r.PH = round(9.5+g.rnd.Float64()*2, 2) // alkaline
		case 2:
			r.Temperature = round(41+g.rnd.Float64()*8, 1)
		default:
			r.TDS = round(2100+g.rnd.Float64()*1500, 0)
		}
	}

	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
