package sim

import "fmt"

// InputDim is the arity of the exogenous input vector.
const InputDim = 15

// Inputs holds the exogenous feed and flow values at one time point.
// The wire order matches InputNames.
type Inputs struct {
	FgIn  float64 // liquid inflow rate, L/h
	CgIn  float64 // glucose feed concentration, mol/L
	FcoIn float64 // CO2 gas inflow rate, L/h
	CcoIn float64 // CO2 feed concentration, mol/L
	FoIn  float64 // O2 gas inflow rate, L/h
	CoIn  float64 // O2 feed concentration, mol/L
	FgOut float64 // gas outflow rate, L/h
	CnIn  float64 // nitrogen feed concentration, mol/L
	FnIn  float64 // nitrogen inflow rate, L/h
	FbIn  float64 // base inflow rate, L/h
	CbIn  float64 // base feed concentration, mol/L
	FmIn  float64 // makeup inflow rate, L/h
	FOut  float64 // liquid outflow rate, L/h
	Tamb  float64 // ambient temperature, K
	Q     float64 // heat input rate
}

// InputNames gives the input vector order for external suppliers.
var InputNames = []string{
	"Fg_in", "Cg_in", "Fco_in", "Cco_in", "Fo_in", "Co_in", "Fg_out",
	"Cn_in", "Fn_in", "Fb_in", "Cb_in", "Fm_in", "F_out", "Tamb", "Q",
}

// InputFunc supplies the exogenous inputs for a given time. It must be
// pure and must always return exactly InputDim values in InputNames
// order.
type InputFunc func(t float64) []float64

// ParseInputs validates the arity of a raw input vector and maps it
// onto named fields. A wrong-length vector is a caller contract
// violation and fails immediately rather than misindexing.
func ParseInputs(vals []float64) (Inputs, error) {
	if len(vals) != InputDim {
		return Inputs{}, fmt.Errorf("input function returned %d values, want %d", len(vals), InputDim)
	}
	return Inputs{
		FgIn:  vals[0],
		CgIn:  vals[1],
		FcoIn: vals[2],
		CcoIn: vals[3],
		FoIn:  vals[4],
		CoIn:  vals[5],
		FgOut: vals[6],
		CnIn:  vals[7],
		FnIn:  vals[8],
		FbIn:  vals[9],
		CbIn:  vals[10],
		FmIn:  vals[11],
		FOut:  vals[12],
		Tamb:  vals[13],
		Q:     vals[14],
	}, nil
}

// Slice returns the inputs in InputNames order.
func (in Inputs) Slice() []float64 {
	return []float64{
		in.FgIn, in.CgIn, in.FcoIn, in.CcoIn, in.FoIn, in.CoIn, in.FgOut,
		in.CnIn, in.FnIn, in.FbIn, in.CbIn, in.FmIn, in.FOut, in.Tamb, in.Q,
	}
}

// Constant returns an InputFunc that ignores time.
func Constant(in Inputs) InputFunc {
	vals := in.Slice()
	return func(t float64) []float64 { return vals }
}
