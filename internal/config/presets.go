package config

var Presets = map[string]*Config{
	// Closed batch: everything already in the tank, no flows.
	"batch": {
		Dt: 0.01, Duration: 50.0, Integrator: "euler", PH: true,
		InitState: InitState{
			Glucose: 100, Biomass: 1, Nitrogen: 10,
			EnzymeZ: 0.5, EnzymeY: 0.5,
			LiquidVol: 1, GasVol: 1, Temp: DefaultAmbient,
		},
		Feed: InputValues{Ambient: DefaultAmbient},
	},
	// Fed-batch: start lean, open a glucose drip after 10 h with a
	// matching outflow so the liquid volume stays put.
	"fed-batch": {
		Dt: 0.01, Duration: 100.0, Integrator: "euler", PH: true,
		InitState: InitState{
			Glucose: 20, Biomass: 2, Nitrogen: 10,
			EnzymeZ: 0.5, EnzymeY: 0.5,
			LiquidVol: 2, GasVol: 1, Temp: DefaultAmbient,
		},
		Profile: []FeedSegment{
			{Until: 10, Inputs: InputValues{Ambient: DefaultAmbient}},
			{Until: 100, Inputs: InputValues{
				LiquidIn: 0.05, GlucoseFeed: 200,
				LiquidOut: 0.05,
				Ambient:   DefaultAmbient,
			}},
		},
	},
	// Aerated: continuous O2 sparge with balanced gas outflow.
	"aerated": {
		Dt: 0.005, Duration: 50.0, Integrator: "rk4", PH: true,
		InitState: InitState{
			Glucose: 100, Biomass: 1, Nitrogen: 10,
			EnzymeZ: 0.5, EnzymeY: 0.5,
			LiquidVol: 1, GasVol: 2, Temp: DefaultAmbient,
		},
		Feed: InputValues{
			O2In: 0.5, O2Feed: 0.04,
			GasOut:  0.5,
			Ambient: DefaultAmbient,
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
