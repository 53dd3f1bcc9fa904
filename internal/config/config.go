package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fermsim/internal/sim"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultAmbient  = 298.0
)

type Config struct {
	Dt         float64       `yaml:"dt"`
	Duration   float64       `yaml:"duration"`
	StartTime  float64       `yaml:"start_time"`
	Integrator string        `yaml:"integrator"`
	PH         bool          `yaml:"ph"`
	InitState  InitState     `yaml:"init_state"`
	Feed       InputValues   `yaml:"feed"`
	Profile    []FeedSegment `yaml:"profile"`
}

// InitState names the 14 state fields so config files don't depend on
// vector positions.
type InitState struct {
	Glucose   float64 `yaml:"glucose"`
	Biomass   float64 `yaml:"biomass"`
	Fumarate  float64 `yaml:"fumarate"`
	Ethanol   float64 `yaml:"ethanol"`
	CO2       float64 `yaml:"co2"`
	O2        float64 `yaml:"o2"`
	Nitrogen  float64 `yaml:"nitrogen"`
	Acid      float64 `yaml:"acid"`
	Base      float64 `yaml:"base"`
	EnzymeZ   float64 `yaml:"enzyme_z"`
	EnzymeY   float64 `yaml:"enzyme_y"`
	LiquidVol float64 `yaml:"liquid_volume"`
	GasVol    float64 `yaml:"gas_volume"`
	Temp      float64 `yaml:"temperature"`
}

// Vector returns the initial state in model field order.
func (s InitState) Vector() []float64 {
	return []float64{
		s.Glucose, s.Biomass, s.Fumarate, s.Ethanol, s.CO2, s.O2,
		s.Nitrogen, s.Acid, s.Base, s.EnzymeZ, s.EnzymeY,
		s.LiquidVol, s.GasVol, s.Temp,
	}
}

// InputValues mirrors sim.Inputs with yaml tags.
type InputValues struct {
	LiquidIn    float64 `yaml:"liquid_in"`
	GlucoseFeed float64 `yaml:"glucose_feed"`
	CO2In       float64 `yaml:"co2_in"`
	CO2Feed     float64 `yaml:"co2_feed"`
	O2In        float64 `yaml:"o2_in"`
	O2Feed      float64 `yaml:"o2_feed"`
	GasOut      float64 `yaml:"gas_out"`
	NitrogenFd  float64 `yaml:"nitrogen_feed"`
	NitrogenIn  float64 `yaml:"nitrogen_in"`
	BaseIn      float64 `yaml:"base_in"`
	BaseFeed    float64 `yaml:"base_feed"`
	MakeupIn    float64 `yaml:"makeup_in"`
	LiquidOut   float64 `yaml:"liquid_out"`
	Ambient     float64 `yaml:"ambient"`
	Heat        float64 `yaml:"heat"`
}

func (v InputValues) Inputs() sim.Inputs {
	return sim.Inputs{
		FgIn: v.LiquidIn, CgIn: v.GlucoseFeed,
		FcoIn: v.CO2In, CcoIn: v.CO2Feed,
		FoIn: v.O2In, CoIn: v.O2Feed,
		FgOut: v.GasOut,
		CnIn:  v.NitrogenFd, FnIn: v.NitrogenIn,
		FbIn: v.BaseIn, CbIn: v.BaseFeed,
		FmIn: v.MakeupIn, FOut: v.LiquidOut,
		Tamb: v.Ambient, Q: v.Heat,
	}
}

// FeedSegment is one piece of a piecewise-constant feed profile,
// active while t < Until. The last segment holds for the rest of the
// run.
type FeedSegment struct {
	Until  float64     `yaml:"until"`
	Inputs InputValues `yaml:"inputs"`
}

func Default() *Config {
	return &Config{
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Integrator: "euler",
		InitState: InitState{
			Glucose:   100,
			Biomass:   1,
			LiquidVol: 1,
			GasVol:    1,
			Temp:      DefaultAmbient,
		},
		Feed: InputValues{Ambient: DefaultAmbient},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// InputFunc compiles the feed settings into the pure input function
// the model consumes. With a profile the segments apply in order and
// the last one holds; otherwise the constant feed block applies.
func (c *Config) InputFunc() sim.InputFunc {
	if len(c.Profile) == 0 {
		return sim.Constant(c.Feed.Inputs())
	}

	segments := make([]FeedSegment, len(c.Profile))
	copy(segments, c.Profile)
	return func(t float64) []float64 {
		for _, seg := range segments {
			if t < seg.Until {
				return seg.Inputs.Inputs().Slice()
			}
		}
		return segments[len(segments)-1].Inputs.Inputs().Slice()
	}
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.InitState.LiquidVol <= 0 || c.InitState.GasVol <= 0 {
		return fmt.Errorf("volumes must be positive, got V=%g Vg=%g",
			c.InitState.LiquidVol, c.InitState.GasVol)
	}
	return nil
}
