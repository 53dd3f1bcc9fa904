package storage

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/fermsim/internal/sim"
)

func testMeta() RunMetadata {
	return RunMetadata{
		Label:      "batch",
		Dt:         0.01,
		Duration:   0.02,
		Integrator: "euler",
		Columns:    sim.FieldNames,
		Metrics:    map[string]float64{"fumarate_yield": 0.4},
	}
}

func testHistory() [][]float64 {
	rows := make([][]float64, 3)
	for k := range rows {
		row := make([]float64, sim.StateDim)
		row[sim.Glucose] = 100 - float64(k)
		row[sim.LiquidVol] = 1
		row[sim.Temp] = 298
		rows[k] = row
	}
	return rows
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	runID, err := st.Save(testMeta(), testHistory())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(runID, "batch_") {
		t.Errorf("run id %q missing label prefix", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.ID != runID || meta.Dt != 0.01 || meta.Integrator != "euler" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["fumarate_yield"] != 0.4 {
		t.Errorf("metrics lost: %v", meta.Metrics)
	}
	if len(meta.Columns) != sim.StateDim {
		t.Errorf("columns lost: %v", meta.Columns)
	}

	rows, times, err := st.LoadHistory(runID)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(rows) != 3 || len(times) != 3 {
		t.Fatalf("got %d rows, %d times, want 3 each", len(rows), len(times))
	}
	for k := range rows {
		if math.Abs(times[k]-float64(k)*0.01) > 1e-12 {
			t.Errorf("row %d time %g, want %g", k, times[k], float64(k)*0.01)
		}
		if rows[k][sim.Glucose] != 100-float64(k) {
			t.Errorf("row %d glucose %g", k, rows[k][sim.Glucose])
		}
	}
}

func TestListEmptyAndPopulated(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := st.Save(testMeta(), testHistory()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Label != "batch" {
		t.Errorf("label %q, want batch", runs[0].Label)
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("absent_1"); err == nil {
		t.Error("expected error for unknown run")
	}
	if _, _, err := st.LoadHistory("absent_1"); err == nil {
		t.Error("expected error for unknown history")
	}
}
