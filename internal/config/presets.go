package config

// Presets are named solver settings; the parameter tables and studies
// stay at their defaults.
var Presets = map[string]SolverConfig{
	"default": {
		Integrator: "rk45",
		EtaMax:     DefaultEtaMax,
		InitStep:   DefaultInitStep,
		MaxStep:    DefaultMaxStep,
		RelTol:     DefaultRelTol,
		AbsTol:     DefaultAbsTol,
	},
	"fine": {
		Integrator: "rk45",
		EtaMax:     DefaultEtaMax,
		InitStep:   0.001,
		MaxStep:    0.01,
		RelTol:     1e-6,
		AbsTol:     1e-9,
	},
	"fast": {
		Integrator: "rk4",
		EtaMax:     DefaultEtaMax,
		InitStep:   0.05,
		MaxStep:    DefaultMaxStep,
		RelTol:     DefaultRelTol,
		AbsTol:     DefaultAbsTol,
	},
}

func GetPreset(name string) (SolverConfig, bool) {
	s, ok := Presets[name]
	return s, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
