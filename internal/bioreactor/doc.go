// Package bioreactor implements a nonlinear fermentation reactor model.
//
// The model tracks 14 state fields (species molar amounts, liquid and
// gas volume, temperature) and advances them with an explicit
// fixed-step scheme driven by exogenous feed inputs:
//
//   - [Model]: state container, balance equations, stepping, history
//   - [RateSolver]: recovers five metabolic pathway fluxes from the
//     empirical kinetic driving terms via a precomputed matrix inverse
//   - [SolvePH]: charge-balance pH estimate on a bounded grid
//
// # Stepping
//
//	m, err := bioreactor.New(x0, inputs, bioreactor.WithPH())
//	for i := 0; i < steps; i++ {
//	    if err := m.Step(dt); err != nil { ... }
//	}
//	table := m.History()  // one row per step, plus the initial row
//
// The default scheme is forward Euler: each step satisfies
// X_after = X_before + DEs(t_before)*dt exactly. There is no step-size
// adaptation; the caller picks a dt small enough for the fast
// low-concentration kinetics.
package bioreactor
