package metrics

import (
	"math"

	"github.com/san-kum/fermsim/internal/sim"
)

// Metric accumulates a scalar summary over recorded output rows.
type Metric interface {
	Name() string
	Observe(x sim.State, t float64)
	Value() float64
	Reset()
}

// FumarateYield reports mol fumaric acid produced per mol glucose
// consumed between the first and latest observed rows.
type FumarateYield struct {
	samples  int
	firstG   float64
	firstFA  float64
	latestG  float64
	latestFA float64
}

func NewFumarateYield() *FumarateYield {
	return &FumarateYield{}
}

func (m *FumarateYield) Name() string { return "fumarate_yield" }

func (m *FumarateYield) Observe(x sim.State, t float64) {
	if len(x) < sim.StateDim {
		return
	}
	if m.samples == 0 {
		m.firstG = x[sim.Glucose]
		m.firstFA = x[sim.Fumarate]
	}
	m.latestG = x[sim.Glucose]
	m.latestFA = x[sim.Fumarate]
	m.samples++
}

func (m *FumarateYield) Value() float64 {
	consumed := m.firstG - m.latestG
	if m.samples < 2 || consumed <= 0 {
		return 0
	}
	return (m.latestFA - m.firstFA) / consumed
}

func (m *FumarateYield) Reset() {
	m.samples = 0
	m.firstG, m.firstFA = 0, 0
	m.latestG, m.latestFA = 0, 0
}

// TemperatureDeviation tracks the largest excursion of the broth
// temperature from a reference, typically the ambient setting.
type TemperatureDeviation struct {
	reference float64
	maxDev    float64
}

func NewTemperatureDeviation(reference float64) *TemperatureDeviation {
	return &TemperatureDeviation{reference: reference}
}

func (m *TemperatureDeviation) Name() string { return "temperature_deviation" }

func (m *TemperatureDeviation) Observe(x sim.State, t float64) {
	if len(x) < sim.StateDim {
		return
	}
	dev := math.Abs(x[sim.Temp] - m.reference)
	if dev > m.maxDev {
		m.maxDev = dev
	}
}

func (m *TemperatureDeviation) Value() float64 { return m.maxDev }

func (m *TemperatureDeviation) Reset() { m.maxDev = 0 }

// GlucoseDepletion records the first time glucose falls below a
// threshold. Value is -1 while glucose is still above it.
type GlucoseDepletion struct {
	threshold float64
	depleted  bool
	when      float64
}

func NewGlucoseDepletion(threshold float64) *GlucoseDepletion {
	return &GlucoseDepletion{threshold: threshold, when: -1}
}

func (m *GlucoseDepletion) Name() string { return "glucose_depletion_time" }

func (m *GlucoseDepletion) Observe(x sim.State, t float64) {
	if m.depleted || len(x) < sim.StateDim {
		return
	}
	if x[sim.Glucose] < m.threshold {
		m.depleted = true
		m.when = t
	}
}

func (m *GlucoseDepletion) Value() float64 { return m.when }

func (m *GlucoseDepletion) Reset() {
	m.depleted = false
	m.when = -1
}
