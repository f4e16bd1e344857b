package ode

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Solver marches a System from eta=0 to Config.EtaMax with a fixed or
// adaptive step, recording every accepted sample.
type Solver struct {
	sys   System
	integ Integrator
}

func NewSolver(sys System, integ Integrator) *Solver {
	return &Solver{sys: sys, integ: integ}
}

func (s *Solver) Solve(ctx context.Context, y0 State, cfg Config) (*Solution, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(y0) != s.sys.Dim() {
		return nil, fmt.Errorf("initial state has %d components, system has %d: %w",
			len(y0), s.sys.Dim(), ErrDimensionMismatch)
	}

	counted := &countedSystem{sys: s.sys}

	est := int(cfg.EtaMax/cfg.Step) + 1
	sol := &Solution{
		Etas:   make([]float64, 0, est),
		States: make([]State, 0, est),
	}

	y := y0.Clone()
	eta := 0.0
	h := cfg.Step

	sol.Etas = append(sol.Etas, eta)
	sol.States = append(sol.States, y.Clone())

	adaptive, hasAdaptive := s.integ.(AdaptiveIntegrator)

	for eta < cfg.EtaMax {
		select {
		case <-ctx.Done():
			sol.Evals = counted.evals
			return sol, ctx.Err()
		default:
		}

		if sol.Steps+sol.Rejected >= cfg.MaxSteps {
			sol.Evals = counted.evals
			return sol, &SolveError{Eta: eta, Step: sol.Steps, State: y, Wrapped: ErrMaxSteps}
		}

		// Clamp the final step so the last sample lands exactly on EtaMax.
		hTry := h
		last := false
		if eta+hTry >= cfg.EtaMax {
			hTry = cfg.EtaMax - eta
			last = true
		}

		var yNew State
		advanced := hTry

		switch {
		case cfg.Adaptive && hasAdaptive:
			next, hNext, err := adaptive.StepAdaptive(counted, y, eta, hTry, cfg.Tol)
			if errors.Is(err, ErrToleranceNotMet) {
				sol.Rejected++
				if hNext < cfg.MinStep {
					sol.Evals = counted.evals
					return sol, &SolveError{Eta: eta, Step: sol.Steps, State: y, Wrapped: ErrStepTooSmall}
				}
				h = hNext
				continue
			}
			if err != nil {
				sol.Evals = counted.evals
				return sol, &SolveError{Eta: eta, Step: sol.Steps, State: y, Wrapped: err}
			}
			yNew = next
			h = clampStep(hNext, cfg.MinStep, cfg.MaxStep)

		case cfg.Adaptive:
			// Step-doubling fallback for integrators without an embedded
			// error estimate.
			var used float64
			var err error
			yNew, used, h, err = s.doubleStep(counted, sol, y, eta, hTry, cfg)
			if err != nil {
				sol.Evals = counted.evals
				return sol, err
			}
			advanced = used
			last = last && used == hTry

		default:
			yNew = s.integ.Step(counted, y, eta, hTry)
		}

		if cfg.ValidateState && !yNew.IsValid() {
			sol.Evals = counted.evals
			return sol, &SolveError{Eta: eta, Step: sol.Steps, State: yNew, Wrapped: ErrInvalidState}
		}

		if last {
			eta = cfg.EtaMax
		} else {
			eta += advanced
		}
		y = yNew
		sol.Steps++
		sol.Etas = append(sol.Etas, eta)
		sol.States = append(sol.States, y.Clone())
	}

	sol.Evals = counted.evals
	return sol, nil
}

// doubleStep estimates local error by comparing one full step against two
// half steps. It returns the advanced state, the step actually taken, and
// the step to try next. Every rejected halving counts toward sol.Rejected
// so run statistics and the MaxSteps guard see fallback retries too.
func (s *Solver) doubleStep(sys System, sol *Solution, y State, eta, h float64, cfg Config) (State, float64, float64, error) {
	y1 := s.integ.Step(sys, y, eta, h)
	yHalf := s.integ.Step(sys, y, eta, h/2)
	y2 := s.integ.Step(sys, yHalf, eta+h/2, h/2)

	errEst := y1.Sub(y2).Norm()
	tol := cfg.Tol.Abs + cfg.Tol.Rel*y.Norm()

	if errEst > tol {
		sol.Rejected++
		if h/2 < cfg.MinStep {
			return nil, 0, h, &SolveError{Eta: eta, Step: sol.Steps, State: y, Wrapped: ErrStepTooSmall}
		}
		return s.doubleStep(sys, sol, y, eta, h/2, cfg)
	}

	next := h
	if errEst < tol/10 {
		next = math.Min(h*2, cfg.MaxStep)
	}
	return y2, h, next, nil
}

func validateConfig(cfg Config) error {
	if cfg.Step <= 0 {
		return fmt.Errorf("step must be positive, got %f", cfg.Step)
	}
	if cfg.EtaMax <= 0 {
		return fmt.Errorf("eta max must be positive, got %f", cfg.EtaMax)
	}
	if cfg.Adaptive && cfg.Tol.Rel <= 0 && cfg.Tol.Abs <= 0 {
		return fmt.Errorf("tolerances must be positive for adaptive stepping")
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", cfg.MaxSteps)
	}
	return nil
}

func clampStep(h, min, max float64) float64 {
	if h < min {
		return min
	}
	if h > max {
		return max
	}
	return h
}

// countedSystem tallies right-hand-side evaluations for run statistics.
type countedSystem struct {
	sys   System
	evals int
}

func (c *countedSystem) Derive(y State, eta float64) State {
	c.evals++
	return c.sys.Derive(y, eta)
}

func (c *countedSystem) Dim() int { return c.sys.Dim() }
