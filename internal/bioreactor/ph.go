package bioreactor

import "math"

// Equilibrium (dissociation) constants for the charge balance.
var (
	kFA1 = math.Pow(10, -3.03) // fumaric acid, first proton
	kFA2 = math.Pow(10, 4.44)  // fumaric acid, second proton
	kA   = math.Pow(10, 8.08)  // strong acid
	kB   = math.Pow(10, 0.56)  // strong base
	kW   = math.Pow(10, -14)   // water
)

const (
	phGridPoints  = 100
	phResidualTol = 1e-1
)

// PHResult is a pH estimate with its charge-balance residual. The grid
// search always returns its best candidate; LowConfidence marks
// estimates whose residual exceeded tolerance, which happens when the
// true root falls outside [0,14] or between grid points.
type PHResult struct {
	PH            float64
	Residual      float64
	LowConfidence bool
}

// SolvePH finds the pH in [0,14] that best balances ionic charge for
// the given weak diprotic acid, strong acid and strong base amounts in
// liquid volume v. A bounded grid search trades resolution (about
// +/-0.14 pH units) for guaranteed termination; pH is a derived
// quantity, never fed back into the dynamics, so that trade is fine.
func SolvePH(nfa, na, nb, v float64) PHResult {
	cFA := nfa / v
	cA := na / v
	cB := nb / v

	balance := func(ph float64) float64 {
		cH := math.Pow(10, -ph)
		cFAminus := kFA1 * cFA / (kFA1 + cH)
		cFAminus2 := kFA2 * cFAminus / (kFA2 + cH)
		cClminus := kA * cA / (kA + cH)
		cOHminus := kW / cH
		cNaplus := kB * cB / (kB + cOHminus)
		return cH + cNaplus - cFAminus - cFAminus2 - cClminus - cOHminus
	}

	step := 14.0 / float64(phGridPoints-1)
	best := PHResult{PH: 0, Residual: math.Abs(balance(0))}
	for i := 1; i < phGridPoints; i++ {
		ph := float64(i) * step
		if r := math.Abs(balance(ph)); r < best.Residual {
			best.PH = ph
			best.Residual = r
		}
	}
	best.LowConfidence = best.Residual > phResidualTol
	return best
}
