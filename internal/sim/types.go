package sim

import (
	"fmt"
	"math"
)

// State is the reactor state vector. Downstream consumers index by
// position, so the field order is fixed: Ng, Nx, Nfa, Ne, Nco, No, Nn,
// Na, Nb, Nz, Ny, V, Vg, T.
type State []float64

const StateDim = 14

// State vector indices. Molar amounts are in mol, volumes in L,
// temperature in K; CO2 and O2 are headspace amounts.
const (
	Glucose = iota // Ng
	Biomass        // Nx
	Fumarate       // Nfa
	Ethanol        // Ne
	CO2            // Nco
	O2             // No
	Nitrogen       // Nn
	Acid           // Na
	Base           // Nb
	EnzymeZ        // Nz
	EnzymeY        // Ny
	LiquidVol      // V
	GasVol         // Vg
	Temp           // T
)

// FieldNames gives the column labels for history tables, in state order.
var FieldNames = []string{
	"Ng", "Nx", "Nfa", "Ne", "Nco", "No", "Nn",
	"Na", "Nb", "Nz", "Ny", "V", "Vg", "T",
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is a set of coupled balance equations evaluated at an
// arbitrary state, so integrators can probe intermediate points.
type System interface {
	Derive(x State, t float64) (State, error)
	Dim() int
}

// Integrator advances a system one fixed step.
type Integrator interface {
	Step(sys System, x State, t, dt float64) (State, error)
}

type StepError struct {
	Time    float64
	Step    int
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
