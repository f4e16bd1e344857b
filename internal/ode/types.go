package ode

import "math"

type State []float64

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

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System describes an autonomous first-order ODE system dY/deta = f(Y).
// The eta argument is passed through for interface compatibility with
// generic steppers; the similarity equations themselves do not use it.
type System interface {
	Derive(y State, eta float64) State
	Dim() int
}

type Integrator interface {
	Step(sys System, y State, eta, h float64) State
}

// AdaptiveIntegrator extends Integrator with an error-controlled step.
// StepAdaptive either accepts the step, returning the advanced state and
// a suggested next step size, or rejects it, returning a nil state, a
// reduced step to retry with, and ErrToleranceNotMet.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, y State, eta, h float64, tol Tolerances) (State, float64, error)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Tolerances holds the error-control settings for adaptive stepping.
// The per-component error scale is Abs + Rel*(|y| + |h*dy|).
type Tolerances struct {
	Rel float64
	Abs float64
}

func (t Tolerances) Scale(y, hdy float64) float64 {
	return t.Abs + t.Rel*(math.Abs(y)+math.Abs(hdy)) + 1e-30
}

type Config struct {
	EtaMax        float64
	Step          float64
	MinStep       float64
	MaxStep       float64
	Tol           Tolerances
	MaxSteps      int
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		EtaMax:        1.5,
		Step:          0.01,
		MinStep:       1e-8,
		MaxStep:       0.1,
		Tol:           Tolerances{Rel: 1e-3, Abs: 1e-5},
		MaxSteps:      10000,
		Adaptive:      true,
		ValidateState: true,
	}
}

// Solution holds the samples of one integration run. Etas is strictly
// increasing, starts at 0 and ends exactly at the configured EtaMax.
type Solution struct {
	Etas     []float64
	States   []State
	Steps    int
	Rejected int
	Evals    int
}

func (s *Solution) Len() int { return len(s.Etas) }

// Column extracts component i of every sampled state.
func (s *Solution) Column(i int) []float64 {
	col := make([]float64, len(s.States))
	for j, st := range s.States {
		col[j] = st[i]
	}
	return col
}

func (s *Solution) Last() State {
	if len(s.States) == 0 {
		return nil
	}
	return s.States[len(s.States)-1]
}
