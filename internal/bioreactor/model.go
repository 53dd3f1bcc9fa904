package bioreactor

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/fermsim/internal/integrators"
	"github.com/san-kum/fermsim/internal/sim"
)

// Model is the nonlinear fermentation reactor: molar amounts of the
// chemical species, liquid and gas volumes and temperature, driven by
// exogenous feed inputs and the metabolic rate network.
//
// A Model owns its state and history exclusively and is not safe for
// concurrent Step calls; give each concurrent simulation its own
// instance. The rate-matrix inverse and kinetic constants are
// immutable and shareable.
type Model struct {
	x      sim.State
	t      float64
	inputs sim.InputFunc
	rates  *RateSolver
	integ  sim.Integrator
	log    *slog.Logger

	phEnabled bool
	history   [][]float64
	steps     int
	negSteps  int
}

type Option func(*Model)

// WithStartTime sets the initial simulation time (default 0).
func WithStartTime(t float64) Option {
	return func(m *Model) { m.t = t }
}

// WithPH enables the pH output as a 15th history column.
func WithPH() Option {
	return func(m *Model) { m.phEnabled = true }
}

// WithIntegrator swaps the default forward-Euler scheme.
func WithIntegrator(integ sim.Integrator) Option {
	return func(m *Model) { m.integ = integ }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// New builds a reactor model from a 14-field initial state and an
// input function. The rate-matrix inverse is computed here, once; a
// singular matrix is a fatal configuration error.
func New(x0 []float64, inputs sim.InputFunc, opts ...Option) (*Model, error) {
	if len(x0) != sim.StateDim {
		return nil, fmt.Errorf("initial state has %d fields, want %d", len(x0), sim.StateDim)
	}
	if inputs == nil {
		return nil, fmt.Errorf("input function is required")
	}

	rates, err := NewRateSolver()
	if err != nil {
		return nil, err
	}

	m := &Model{
		x:      sim.State(x0).Clone(),
		inputs: inputs,
		rates:  rates,
		integ:  integrators.NewEuler(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.history = append(m.history, m.Outputs())
	return m, nil
}

func (m *Model) Dim() int      { return sim.StateDim }
func (m *Model) Time() float64 { return m.t }

// State returns a copy of the current state vector.
func (m *Model) State() sim.State { return m.x.Clone() }

// Derive evaluates the balance equations at an arbitrary state. Every
// component is clamped to zero on read so that a slightly negative
// amount from an under-resolved step cannot poison the concentration
// ratios; the stored state itself is never corrected.
func (m *Model) Derive(x sim.State, t float64) (sim.State, error) {
	if len(x) != sim.StateDim {
		return nil, fmt.Errorf("state has %d fields, want %d", len(x), sim.StateDim)
	}

	var n [sim.StateDim]float64
	for i, v := range x {
		n[i] = math.Max(0, v)
	}
	v, vg, temp := n[sim.LiquidVol], n[sim.GasVol], n[sim.Temp]
	if v <= 0 || vg <= 0 {
		return nil, fmt.Errorf("non-positive volume at t=%.4f: V=%g, Vg=%g", t, v, vg)
	}

	in, err := sim.ParseInputs(m.inputs(t))
	if err != nil {
		return nil, err
	}

	// Liquid-phase concentrations; CO2 and O2 live in the headspace.
	cg := n[sim.Glucose] / v
	cx := n[sim.Biomass] / v
	cfa := n[sim.Fumarate] / v
	ce := n[sim.Ethanol] / v
	cn := n[sim.Nitrogen] / v
	ca := n[sim.Acid] / v
	cb := n[sim.Base] / v
	cz := n[sim.EnzymeZ] / v
	cy := n[sim.EnzymeY] / v
	cco := n[sim.CO2] / vg
	co := n[sim.O2] / vg

	kin := EvalKinetics(cg, cz, cy)
	fl := m.rates.Solve(kin.RHS)

	rG := -fl.Fumarate - fl.TCA - fl.Ethanol - fl.Biomass
	rX := 6 * fl.Biomass
	rFA := 2 * (fl.Fumarate + 0.5*kin.RZ)
	rE := 2 * (fl.Ethanol - kin.RZ) * kin.Sat
	rCO := -2*fl.Fumarate + 6*fl.TCA + 2*fl.Ethanol + alpha*fl.Biomass
	rO := -0.5 * fl.Respiration

	dx := make(sim.State, sim.StateDim)
	dx[sim.Glucose] = in.FgIn*in.CgIn - in.FOut*cg + rG*cx*v
	dx[sim.Biomass] = rX * cx * v
	dx[sim.Fumarate] = -in.FOut*cfa + rFA*cx*v
	dx[sim.Ethanol] = -in.FOut*ce + rE*cx*v
	dx[sim.CO2] = in.FcoIn*in.CcoIn - in.FgOut*cco + rCO*cx*v
	dx[sim.O2] = in.FoIn*in.CoIn - in.FgOut*co - rO*cx*v
	dx[sim.Nitrogen] = in.FnIn*in.CnIn - in.FOut*cn - delta*rX*cx*v
	dx[sim.Acid] = -in.FOut * ca
	dx[sim.Base] = in.FbIn*in.CbIn - in.FOut*cb
	dx[sim.EnzymeZ] = -190 * kin.RZ * cx * v
	dx[sim.EnzymeY] = -95 * kin.RY * cx * v
	dx[sim.LiquidVol] = in.FgIn + in.FnIn + in.FbIn + in.FmIn - in.FOut
	dx[sim.GasVol] = in.FcoIn + in.FoIn - in.FgOut
	dx[sim.Temp] = 4.5*in.Q - 0.25*(temp-in.Tamb)
	return dx, nil
}

// DEs evaluates the balance equations at the stored state.
func (m *Model) DEs(t float64) (sim.State, error) {
	return m.Derive(m.x, t)
}

// Step advances the model one fixed step: derivative at the pre-update
// (t, X) pair, then X += dX*dt and t += dt, then one history row.
// Stability is the caller's responsibility.
func (m *Model) Step(dt float64) error {
	next, err := m.integ.Step(m, m.x, m.t, dt)
	if err != nil {
		return sim.StepError{Time: m.t, Step: m.steps, Message: err.Error()}
	}
	m.x = next
	m.t += dt
	m.steps++

	for i, v := range m.x {
		if v < 0 {
			m.negSteps++
			m.log.Debug("state component went negative",
				"field", sim.FieldNames[i], "value", v, "t", m.t)
			break
		}
	}

	m.history = append(m.history, m.Outputs())
	return nil
}

// Outputs returns the current output row: the state vector, plus pH
// when enabled.
func (m *Model) Outputs() []float64 {
	out := make([]float64, 0, sim.StateDim+1)
	out = append(out, m.x...)
	if m.phEnabled {
		res := SolvePH(m.x[sim.Fumarate], m.x[sim.Acid], m.x[sim.Base], m.x[sim.LiquidVol])
		if res.LowConfidence {
			m.log.Warn("pH charge balance residual above tolerance",
				"pH", res.PH, "residual", res.Residual, "t", m.t)
		}
		out = append(out, res.PH)
	}
	return out
}

// OutputNames returns the history column labels.
func (m *Model) OutputNames() []string {
	if m.phEnabled {
		return append(append([]string{}, sim.FieldNames...), "pH")
	}
	return append([]string{}, sim.FieldNames...)
}

// History returns the accumulated output table: one row recorded at
// construction plus one per completed step. Rows are never mutated
// after being appended.
func (m *Model) History() [][]float64 {
	rows := make([][]float64, len(m.history))
	copy(rows, m.history)
	return rows
}

// NegativeExcursions reports how many steps left at least one stored
// state component negative. A nonzero count means dt was too coarse
// for the fast kinetics somewhere along the run.
func (m *Model) NegativeExcursions() int { return m.negSteps }
