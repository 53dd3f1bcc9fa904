package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fermsim/internal/sim"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Dt = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero dt")
	}

	cfg = Default()
	cfg.InitState.LiquidVol = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative volume")
	}
}

func TestInitStateVectorOrder(t *testing.T) {
	s := InitState{
		Glucose: 1, Biomass: 2, Fumarate: 3, Ethanol: 4, CO2: 5, O2: 6,
		Nitrogen: 7, Acid: 8, Base: 9, EnzymeZ: 10, EnzymeY: 11,
		LiquidVol: 12, GasVol: 13, Temp: 14,
	}
	v := s.Vector()
	if len(v) != sim.StateDim {
		t.Fatalf("vector has %d fields, want %d", len(v), sim.StateDim)
	}
	for i := range v {
		if v[i] != float64(i+1) {
			t.Errorf("position %d (%s) = %g, want %d", i, sim.FieldNames[i], v[i], i+1)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reactor.yaml")

	cfg := Default()
	cfg.Dt = 0.002
	cfg.PH = true
	cfg.Feed.O2In = 0.25

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Dt != 0.002 || !loaded.PH || loaded.Feed.O2In != 0.25 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.InitState.Glucose != cfg.InitState.Glucose {
		t.Errorf("init state lost: %+v", loaded.InitState)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if err != nil && !os.IsNotExist(err) {
		t.Errorf("want not-exist error, got %v", err)
	}
}

func TestConstantInputFunc(t *testing.T) {
	cfg := Default()
	cfg.Feed.LiquidIn = 0.3

	fn := cfg.InputFunc()
	for _, tt := range []float64{0, 1, 100} {
		vals := fn(tt)
		if len(vals) != sim.InputDim {
			t.Fatalf("input func returned %d values, want %d", len(vals), sim.InputDim)
		}
		if vals[0] != 0.3 {
			t.Errorf("t=%g: liquid inflow %g, want 0.3", tt, vals[0])
		}
	}
}

func TestProfileInputFunc(t *testing.T) {
	cfg := Default()
	cfg.Profile = []FeedSegment{
		{Until: 10, Inputs: InputValues{Ambient: 298}},
		{Until: 20, Inputs: InputValues{LiquidIn: 0.1, GlucoseFeed: 200, Ambient: 298}},
	}

	fn := cfg.InputFunc()

	in, err := sim.ParseInputs(fn(5))
	if err != nil {
		t.Fatalf("ParseInputs: %v", err)
	}
	if in.FgIn != 0 {
		t.Errorf("segment 1 liquid inflow %g, want 0", in.FgIn)
	}

	in, _ = sim.ParseInputs(fn(15))
	if in.FgIn != 0.1 || in.CgIn != 200 {
		t.Errorf("segment 2 feed wrong: %+v", in)
	}

	// Past the final boundary the last segment holds.
	in, _ = sim.ParseInputs(fn(500))
	if in.FgIn != 0.1 {
		t.Errorf("final segment did not hold: %+v", in)
	}

	// Purity: same t, same values.
	a, b := fn(12), fn(12)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("input func not pure at index %d", i)
		}
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
		if vals := cfg.InputFunc()(0); len(vals) != sim.InputDim {
			t.Errorf("preset %s input func arity %d", name, len(vals))
		}
	}
	if GetPreset("nope") != nil {
		t.Error("unknown preset should be nil")
	}
}
