package bioreactor

import (
	"math"
	"testing"

	"github.com/san-kum/fermsim/internal/sim"
)

// batchState is the end-to-end scenario start point: glucose-rich
// broth, trace biomass, unit volumes, 298 K.
func batchState() []float64 {
	return []float64{100, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 298}
}

func zeroFlowInputs(tamb float64) sim.InputFunc {
	return sim.Constant(sim.Inputs{Tamb: tamb})
}

func TestNewRejectsBadConstruction(t *testing.T) {
	if _, err := New([]float64{1, 2, 3}, zeroFlowInputs(298)); err == nil {
		t.Error("expected error for short initial state")
	}
	if _, err := New(batchState(), nil); err == nil {
		t.Error("expected error for nil input function")
	}
}

func TestEulerStepIdentity(t *testing.T) {
	m, err := New(batchState(), zeroFlowInputs(305))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before := m.State()
	tBefore := m.Time()

	dx, err := m.DEs(tBefore)
	if err != nil {
		t.Fatalf("DEs: %v", err)
	}

	dt := 0.037
	if err := m.Step(dt); err != nil {
		t.Fatalf("Step: %v", err)
	}

	after := m.State()
	for i := range after {
		want := before[i] + dx[i]*dt
		if math.Abs(after[i]-want) > 1e-12 {
			t.Errorf("field %s: got %g, want %g", sim.FieldNames[i], after[i], want)
		}
	}
	if math.Abs(m.Time()-(tBefore+dt)) > 1e-15 {
		t.Errorf("time %g, want %g", m.Time(), tBefore+dt)
	}
}

func TestConservationUnderZeroFlow(t *testing.T) {
	// All flow rates zero: the volume balances have no terms at all,
	// so V and Vg must hold their initial values exactly. Feed
	// concentrations are deliberately nonzero; without a carrier flow
	// they must not leak into the balances.
	in := sim.Constant(sim.Inputs{CgIn: 5, CcoIn: 2, CoIn: 1, CnIn: 3, CbIn: 4, Tamb: 290})

	m, err := New(batchState(), in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 50; i++ {
		if err := m.Step(0.01); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	x := m.State()
	if x[sim.LiquidVol] != 1 {
		t.Errorf("liquid volume drifted to %g", x[sim.LiquidVol])
	}
	if x[sim.GasVol] != 1 {
		t.Errorf("gas volume drifted to %g", x[sim.GasVol])
	}

	// Temperature relaxes toward ambient.
	if x[sim.Temp] >= 298 || x[sim.Temp] < 290 {
		t.Errorf("temperature %g, want decay from 298 toward 290", x[sim.Temp])
	}
}

func TestBatchScenario(t *testing.T) {
	m, err := New(batchState(), zeroFlowInputs(298))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prev := m.State()
	for i := 0; i < 10; i++ {
		if err := m.Step(0.01); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		x := m.State()
		if x[sim.Glucose] >= prev[sim.Glucose] {
			t.Errorf("step %d: glucose did not decrease: %g -> %g", i, prev[sim.Glucose], x[sim.Glucose])
		}
		if x[sim.Biomass] <= prev[sim.Biomass] {
			t.Errorf("step %d: biomass did not increase: %g -> %g", i, prev[sim.Biomass], x[sim.Biomass])
		}
		prev = x
	}

	x := m.State()
	if x[sim.LiquidVol] != 1 || x[sim.GasVol] != 1 {
		t.Errorf("volumes drifted: V=%g, Vg=%g", x[sim.LiquidVol], x[sim.GasVol])
	}
	if x[sim.Temp] != 298 {
		t.Errorf("temperature drifted to %g with ambient at 298", x[sim.Temp])
	}
}

func TestHistoryGrowth(t *testing.T) {
	m, err := New(batchState(), zeroFlowInputs(298))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := append([]float64{}, m.History()[0]...)

	const n = 7
	snapshots := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		if err := m.Step(0.01); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		snapshots = append(snapshots, m.Outputs())
	}

	hist := m.History()
	if len(hist) != n+1 {
		t.Fatalf("history has %d rows, want %d", len(hist), n+1)
	}
	for j, v := range hist[0] {
		if v != first[j] {
			t.Errorf("row 0 column %d changed: %g != %g", j, hist[0][j], first[j])
		}
	}
	for k := 1; k <= n; k++ {
		for j := range hist[k] {
			if hist[k][j] != snapshots[k-1][j] {
				t.Errorf("row %d column %d: %g != snapshot %g", k, j, hist[k][j], snapshots[k-1][j])
			}
		}
	}
}

func TestOutputsWithPH(t *testing.T) {
	m, err := New(batchState(), zeroFlowInputs(298), WithPH())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out := m.Outputs()
	if len(out) != sim.StateDim+1 {
		t.Fatalf("outputs has %d fields, want %d", len(out), sim.StateDim+1)
	}
	ph := out[sim.StateDim]
	if ph < 0 || ph > 14 {
		t.Errorf("pH output %g outside [0, 14]", ph)
	}
	if names := m.OutputNames(); names[len(names)-1] != "pH" {
		t.Errorf("last output name %q, want pH", names[len(names)-1])
	}
}

func TestInputArityViolation(t *testing.T) {
	bad := func(t float64) []float64 { return []float64{1, 2, 3} }

	m, err := New(batchState(), bad)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.DEs(0); err == nil {
		t.Error("expected arity error from DEs")
	}
	if err := m.Step(0.01); err == nil {
		t.Error("expected arity error from Step")
	}
	if len(m.History()) != 1 {
		t.Errorf("failed step appended history: %d rows", len(m.History()))
	}
}

func TestZeroVolumeIsFatal(t *testing.T) {
	x0 := batchState()
	x0[sim.LiquidVol] = 0

	m, err := New(x0, zeroFlowInputs(298))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.DEs(0); err == nil {
		t.Error("expected error for zero liquid volume")
	}
}

func TestStartTimeOption(t *testing.T) {
	m, err := New(batchState(), zeroFlowInputs(298), WithStartTime(5))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Time() != 5 {
		t.Errorf("start time %g, want 5", m.Time())
	}
	if err := m.Step(0.5); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if math.Abs(m.Time()-5.5) > 1e-15 {
		t.Errorf("time %g, want 5.5", m.Time())
	}
}

func TestReadSideClampOnly(t *testing.T) {
	// A deliberately huge step drives glucose negative. The stored
	// state keeps the excursion (writes are not clamped), while the
	// next derivative evaluation still succeeds because reads are.
	m, err := New(batchState(), zeroFlowInputs(298))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 200 && m.State()[sim.Glucose] >= 0; i++ {
		if err := m.Step(50); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if m.State()[sim.Glucose] >= 0 {
		t.Skip("could not provoke a negative excursion")
	}
	if m.NegativeExcursions() == 0 {
		t.Error("negative excursion not counted")
	}
	if _, err := m.DEs(m.Time()); err != nil {
		t.Errorf("DEs failed after excursion: %v", err)
	}
}
