package bioreactor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Stoichiometric coefficients of the five metabolic pathways:
//
//	1) glucose + 2*CO2 + 6*ATP --> 2*FA + 2*water
//	2) glucose --> 6*CO2 + 12*NADH + 4*ATP (TCA)
//	3) NADH + 0.5*O2 --> 7/3 ATP (respiration)
//	4) glucose --> 2*ethanol + 2*CO2 + 2*ATP
//	5) glucose + gamma*ATP --> 6*biomass + beta*NADH
const (
	alpha = 0.1 // CO2 yield on the biomass pathway
	gamma = 1.8 // ATP demand of the biomass pathway
	beta  = 0.1 // NADH yield of the biomass pathway
	theta = 0.1 // biomass kinetic rate cap
	delta = 0.2 // nitrogen demand per unit biomass growth
)

// Empirical kinetic constants. These are calibration values carried
// over from the fitted model; they are not derivable from first
// principles.
const (
	kFumarate  = 15e-3 // max fumarate-forming rate
	kmFumarate = 1e-2  // fumarate half-saturation, mol/L
	kmEthanol  = 1e-5  // ethanol half-saturation, mol/L
	kmBiomass  = 1e-3  // biomass half-saturation, mol/L
	rRespConst = 8e-5  // fixed respiration driving term

	riseY    = 0.6 / 46 / 25 * 4 * 1.8 // enzyme-Y growth per unit Cy
	riseZ    = 2.0 / 46 / 120 * 3.2    // constant enzyme-Z term
	turnover = 0.6 / 46 / 40 * 3 / 3   // shared decay per unit Cz
)

// Fluxes are the five pathway rates recovered from the linear solve,
// per unit biomass concentration.
type Fluxes struct {
	Fumarate    float64 // rFAf
	TCA         float64 // rTCA
	Respiration float64 // rResp
	Ethanol     float64 // rEf
	Biomass     float64 // rbio
}

// rateMatrix builds the fixed coupling between the pathway fluxes and
// the empirical kinetic driving terms.
func rateMatrix() *mat.Dense {
	return mat.NewDense(5, 5, []float64{
		1, 0, 0, 0, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
		-6, 4, 7.0 / 3.0, 2, -gamma,
		0, 12, -1, 0, beta,
	})
}

// RateSolver solves rate_matrix * fluxes = rhs. The matrix never
// changes, so its inverse is computed once and every solve is a single
// matrix-vector product.
type RateSolver struct {
	inv *mat.Dense
}

func NewRateSolver() (*RateSolver, error) {
	inv := &mat.Dense{}
	if err := inv.Inverse(rateMatrix()); err != nil {
		return nil, fmt.Errorf("rate matrix is singular: %w", err)
	}
	return &RateSolver{inv: inv}, nil
}

// Solve recovers the five pathway fluxes from a kinetic right-hand
// side. Singularity was ruled out at construction, so there is no
// failure path here.
func (s *RateSolver) Solve(rhs [5]float64) Fluxes {
	var out mat.VecDense
	out.MulVec(s.inv, mat.NewVecDense(5, rhs[:]))
	return Fluxes{
		Fumarate:    out.AtVec(0),
		TCA:         out.AtVec(1),
		Respiration: out.AtVec(2),
		Ethanol:     out.AtVec(3),
		Biomass:     out.AtVec(4),
	}
}

// Kinetics is the empirical right-hand side of the rate network,
// evaluated at the current glucose and enzyme-pool concentrations.
type Kinetics struct {
	RZ  float64 // enzyme-pool-Z turnover
	RY  float64 // enzyme-pool-Y turnover
	Sat float64 // glucose saturation Cg/(kmEthanol+Cg)
	RHS [5]float64
}

// EvalKinetics computes the kinetic driving terms. The enzyme turnover
// rates switch off entirely once their pool is depleted.
func EvalKinetics(cg, cz, cy float64) Kinetics {
	decay := turnover * cz

	var rZ, rY float64
	if cz > 0 {
		rZ = decay + riseZ
	}
	if cy > 0 {
		rY = riseY*cy + decay
	}

	sat := cg / (kmEthanol + cg)
	rFumarate := kFumarate*(cg/(kmFumarate+cg)) - 0.5*rZ
	rEthanol := (riseZ + rY) * sat
	rBiomass := theta * (cg / (kmBiomass + cg))

	return Kinetics{
		RZ:  rZ,
		RY:  rY,
		Sat: sat,
		RHS: [5]float64{rFumarate, rEthanol, rRespConst, rBiomass, 0},
	}
}
