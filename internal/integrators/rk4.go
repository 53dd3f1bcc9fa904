package integrators

import "github.com/san-kum/fermsim/internal/sim"

// RK4 is the classical fourth-order Runge-Kutta method. It probes the
// balance equations at intermediate states, so a reactor stepped with
// it no longer satisfies the plain forward-Euler update identity.
type RK4 struct {
	scratch sim.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys sim.System, x sim.State, t, dt float64) (sim.State, error) {
	n := len(x)
	if len(r.scratch) != n {
		r.scratch = make(sim.State, n)
	}

	k1, err := sys.Derive(x, t)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := sys.Derive(r.scratch, t+dt*0.5)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := sys.Derive(r.scratch, t+dt*0.5)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := sys.Derive(r.scratch, t+dt)
	if err != nil {
		return nil, err
	}

	result := make(sim.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}
