package integrators

import "github.com/san-kum/fermsim/internal/sim"

// Euler is the explicit forward method: one derivative evaluation at
// the pre-update (t, x) pair. First-order accurate and conditionally
// stable; dt must stay small against the fastest kinetic time constant
// (the tightest half-saturation constant is on the order of 1e-5).
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys sim.System, x sim.State, t, dt float64) (sim.State, error) {
	dx, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
