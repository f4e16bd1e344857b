package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEtaMax   = 1.5
	DefaultInitStep = 0.01
	DefaultMaxStep  = 0.1
	DefaultRelTol   = 1e-3
	DefaultAbsTol   = 1e-5
	DefaultWidthIn  = 8.0
	DefaultHeightIn = 6.0
	DefaultDPI      = 300
)

// Param is one physical parameter table. The first value is the baseline
// used whenever the parameter is not under study.
type Param struct {
	Key    string    `yaml:"key"`
	Label  string    `yaml:"label"`
	Values []float64 `yaml:"values"`
}

func (p Param) Baseline() float64 { return p.Values[0] }

// Study names one output figure: which parameter is swept and which
// state profile is plotted.
type Study struct {
	Param   string `yaml:"param"`
	Profile string `yaml:"profile"`
	Title   string `yaml:"title"`
	File    string `yaml:"file"`
}

type SolverConfig struct {
	Integrator string  `yaml:"integrator"`
	EtaMax     float64 `yaml:"eta_max"`
	InitStep   float64 `yaml:"init_step"`
	MaxStep    float64 `yaml:"max_step"`
	RelTol     float64 `yaml:"rel_tol"`
	AbsTol     float64 `yaml:"abs_tol"`
}

type OutputConfig struct {
	Dir      string  `yaml:"dir"`
	DataDir  string  `yaml:"data_dir"`
	Workbook string  `yaml:"workbook"`
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	DPI      int     `yaml:"dpi"`
}

// Config is the immutable sweep configuration: the parameter tables, the
// perturbation factors with their composition labels, the study list and
// the solver/output settings. It is built once and passed into the sweep
// driver; nothing mutates it after construction.
type Config struct {
	Solver  SolverConfig `yaml:"solver"`
	Params  []Param      `yaml:"params"`
	Factors []float64    `yaml:"factors"`
	Labels  []string     `yaml:"labels"`
	Studies []Study      `yaml:"studies"`
	Output  OutputConfig `yaml:"output"`
}

func DefaultConfig() *Config {
	table := []float64{0.5, 1.0, 1.5}
	return &Config{
		Solver: SolverConfig{
			Integrator: "rk45",
			EtaMax:     DefaultEtaMax,
			InitStep:   DefaultInitStep,
			MaxStep:    DefaultMaxStep,
			RelTol:     DefaultRelTol,
			AbsTol:     DefaultAbsTol,
		},
		Params: []Param{
			{Key: "we", Label: "Weissenberg number", Values: append([]float64(nil), table...)},
			{Key: "beta", Label: "Magnetic Prandtl number", Values: append([]float64(nil), table...)},
			{Key: "lambda", Label: "Magnetic number", Values: append([]float64(nil), table...)},
			{Key: "omega_a", Label: "Time-relaxation number", Values: append([]float64(nil), table...)},
			{Key: "hs", Label: "Heat source parameter", Values: append([]float64(nil), table...)},
		},
		Factors: []float64{1.0, 1.02, 1.04, 1.06},
		Labels: []string{
			"Tri-hybrid nanofluid",
			"Hybrid nanofluid",
			"Nanofluid",
			"Base fluid",
		},
		Studies: []Study{
			{Param: "we", Profile: "velocity", Title: "Velocity vs Weissenberg number", File: "Velocity_vs_Weissenberg_number.png"},
			{Param: "beta", Profile: "velocity", Title: "Velocity vs Magnetic Prandtl number", File: "Velocity_vs_Magnetic_Prandtl_number.png"},
			{Param: "lambda", Profile: "velocity", Title: "Velocity vs Magnetic number", File: "Velocity_vs_Magnetic_number.png"},
			{Param: "beta", Profile: "crossflow", Title: "Vertical Velocity vs Magnetic Prandtl number", File: "Vertical_Velocity_vs_Magnetic_Prandtl_number.png"},
			{Param: "omega_a", Profile: "temperature", Title: "Temperature vs Omega_a", File: "Temperature_vs_Omega_a.png"},
			{Param: "hs", Profile: "temperature", Title: "Temperature vs Hs", File: "Temperature_vs_Hs.png"},
			{Param: "beta", Profile: "temperature", Title: "Temperature vs beta", File: "Temperature_vs_beta.png"},
			{Param: "lambda", Profile: "temperature", Title: "Temperature vs lambda", File: "Temperature_vs_lambda.png"},
		},
		Output: OutputConfig{
			Dir:      ".",
			WidthIn:  DefaultWidthIn,
			HeightIn: DefaultHeightIn,
			DPI:      DefaultDPI,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Param looks up a parameter table by key.
func (c *Config) Param(key string) (Param, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p, true
		}
	}
	return Param{}, false
}

// Validate checks the cross-references the sweep driver relies on: every
// curve index needs a factor and a label, every study needs a known
// parameter and profile, every parameter table needs values.
func (c *Config) Validate() error {
	if len(c.Factors) == 0 {
		return fmt.Errorf("config: no perturbation factors")
	}
	if len(c.Labels) != len(c.Factors) {
		return fmt.Errorf("config: %d labels for %d factors", len(c.Labels), len(c.Factors))
	}
	for _, p := range c.Params {
		if len(p.Values) == 0 {
			return fmt.Errorf("config: parameter %q has no values", p.Key)
		}
	}
	for _, s := range c.Studies {
		if _, ok := c.Param(s.Param); !ok {
			return fmt.Errorf("config: study %q references unknown parameter %q", s.File, s.Param)
		}
		switch s.Profile {
		case "velocity", "crossflow", "temperature":
		default:
			return fmt.Errorf("config: study %q has unknown profile %q", s.File, s.Profile)
		}
		if s.File == "" {
			return fmt.Errorf("config: study for %q has no output file", s.Param)
		}
	}
	if c.Solver.EtaMax <= 0 {
		return fmt.Errorf("config: eta max must be positive")
	}
	if c.Solver.InitStep <= 0 || c.Solver.MaxStep <= 0 {
		return fmt.Errorf("config: step sizes must be positive")
	}
	return nil
}
