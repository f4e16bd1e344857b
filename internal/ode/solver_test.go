package ode

import (
	"context"
	"errors"
	"math"
	"testing"
)

// testSystem is dY/deta = -Y with the closed form exp(-eta).
type testSystem struct{}

func (testSystem) Dim() int { return 1 }

func (testSystem) Derive(y State, _ float64) State {
	return State{-y[0]}
}

// testIntegrator is a forward Euler step.
type testIntegrator struct{}

func (testIntegrator) Step(sys System, y State, eta, h float64) State {
	dy := sys.Derive(y, eta)
	out := make(State, len(y))
	for i := range y {
		out[i] = y[i] + h*dy[i]
	}
	return out
}

// blowupSystem diverges immediately.
type blowupSystem struct{}

func (blowupSystem) Dim() int { return 1 }

func (blowupSystem) Derive(y State, _ float64) State {
	return State{math.Inf(1)}
}

// stiffDecay is dY/deta = -10Y, stiff enough that Euler step-doubling
// rejects a coarse opening step several times.
type stiffDecay struct{}

func (stiffDecay) Dim() int { return 1 }

func (stiffDecay) Derive(y State, _ float64) State {
	return State{-10 * y[0]}
}

func fixedConfig() Config {
	cfg := DefaultConfig()
	cfg.Adaptive = false
	cfg.Step = 0.01
	return cfg
}

func TestSolverFixedStep(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	sol, err := solver.Solve(context.Background(), State{1.0}, fixedConfig())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if sol.Etas[0] != 0 {
		t.Errorf("expected first sample at 0, got %f", sol.Etas[0])
	}
	if sol.Etas[len(sol.Etas)-1] != 1.5 {
		t.Errorf("expected last sample at 1.5, got %f", sol.Etas[len(sol.Etas)-1])
	}

	expected := math.Exp(-1.5)
	got := sol.Last()[0]
	if math.Abs(got-expected) > 0.02 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, got)
	}
}

func TestSolverEtasIncreasing(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	sol, err := solver.Solve(context.Background(), State{1.0}, fixedConfig())
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	for i := 1; i < len(sol.Etas); i++ {
		if sol.Etas[i] <= sol.Etas[i-1] {
			t.Fatalf("etas not strictly increasing at %d: %f then %f",
				i, sol.Etas[i-1], sol.Etas[i])
		}
	}

	if sol.Steps != len(sol.Etas)-1 {
		t.Errorf("step count %d does not match %d samples", sol.Steps, len(sol.Etas))
	}
}

func TestSolverFinalStepClamped(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	// 0.4 does not divide 1.5; the last step must be clamped.
	cfg := fixedConfig()
	cfg.Step = 0.4

	sol, err := solver.Solve(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	if got := sol.Etas[len(sol.Etas)-1]; got != cfg.EtaMax {
		t.Errorf("expected exact landing on %f, got %.17f", cfg.EtaMax, got)
	}
	if sol.Steps != 4 {
		t.Errorf("expected 4 steps (3 full + 1 clamped), got %d", sol.Steps)
	}
}

func TestSolverStepDoubling(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	cfg := DefaultConfig()
	cfg.Step = 0.1
	cfg.Adaptive = true // testIntegrator has no embedded estimate

	sol, err := solver.Solve(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	expected := math.Exp(-1.5)
	got := sol.Last()[0]
	if math.Abs(got-expected) > 1e-2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, got)
	}
	if got := sol.Etas[len(sol.Etas)-1]; got != cfg.EtaMax {
		t.Errorf("expected exact landing on %f, got %.17f", cfg.EtaMax, got)
	}
}

func TestSolverStepDoublingRejectionStats(t *testing.T) {
	solver := NewSolver(stiffDecay{}, testIntegrator{})

	cfg := DefaultConfig()
	cfg.Adaptive = true // testIntegrator has no embedded estimate
	cfg.Step = 0.1
	cfg.Tol = Tolerances{Abs: 1e-4}
	cfg.MaxSteps = 4

	// The opening step halves from 0.1 down to 0.0015625 before the error
	// estimate passes: six rejections around one accepted step. The
	// MaxSteps guard must see all seven on its next check.
	sol, err := solver.Solve(context.Background(), State{1.0}, cfg)
	if !errors.Is(err, ErrMaxSteps) {
		t.Fatalf("expected max-steps error, got %v", err)
	}
	if sol.Rejected != 6 {
		t.Errorf("expected 6 rejected halvings, got %d", sol.Rejected)
	}
	if sol.Steps != 1 {
		t.Errorf("expected the guard to trip after one accepted step, got %d", sol.Steps)
	}
}

func TestSolverStepTooSmallReportsStep(t *testing.T) {
	solver := NewSolver(stiffDecay{}, testIntegrator{})

	cfg := DefaultConfig()
	cfg.Adaptive = true
	cfg.Tol = Tolerances{Abs: 1e-4}
	cfg.MinStep = 0.03

	// Two halvings (0.1 then 0.05) both fail the estimate; the third would
	// drop below MinStep, so the fallback gives up carrying the caller's
	// step index.
	sol := &Solution{Steps: 7}
	_, _, _, err := solver.doubleStep(stiffDecay{}, sol, State{1.0}, 0, 0.1, cfg)
	if !errors.Is(err, ErrStepTooSmall) {
		t.Fatalf("expected step-too-small, got %v", err)
	}

	var solveErr *SolveError
	if !errors.As(err, &solveErr) {
		t.Fatal("expected a SolveError wrapper")
	}
	if solveErr.Step != 7 {
		t.Errorf("expected error to carry step 7, got %d", solveErr.Step)
	}
	if sol.Rejected != 2 {
		t.Errorf("expected 2 rejected halvings, got %d", sol.Rejected)
	}
}

func TestSolverInvalidConfig(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero step", Config{Step: 0, EtaMax: 1.5, MaxSteps: 100}},
		{"negative step", Config{Step: -0.1, EtaMax: 1.5, MaxSteps: 100}},
		{"zero eta max", Config{Step: 0.1, EtaMax: 0, MaxSteps: 100}},
		{"zero max steps", Config{Step: 0.1, EtaMax: 1.5}},
		{"adaptive without tolerances", Config{Step: 0.1, EtaMax: 1.5, MaxSteps: 100, Adaptive: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := solver.Solve(context.Background(), State{1.0}, tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSolverDimensionMismatch(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	_, err := solver.Solve(context.Background(), State{1.0, 2.0}, fixedConfig())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}

func TestSolverInvalidStateDetected(t *testing.T) {
	solver := NewSolver(blowupSystem{}, testIntegrator{})

	_, err := solver.Solve(context.Background(), State{1.0}, fixedConfig())
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected invalid state error, got %v", err)
	}

	var solveErr *SolveError
	if !errors.As(err, &solveErr) {
		t.Fatal("expected a SolveError wrapper")
	}
	if solveErr.Step != 0 {
		t.Errorf("expected failure at step 0, got %d", solveErr.Step)
	}
}

func TestSolverContextCancel(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := solver.Solve(ctx, State{1.0}, fixedConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation, got %v", err)
	}
}

func TestSolverEvalCount(t *testing.T) {
	solver := NewSolver(testSystem{}, testIntegrator{})

	cfg := fixedConfig()
	cfg.Step = 0.1

	sol, err := solver.Solve(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	// Euler: one evaluation per accepted step.
	if sol.Evals != sol.Steps {
		t.Errorf("expected %d evaluations, got %d", sol.Steps, sol.Evals)
	}
}

func TestSolutionColumn(t *testing.T) {
	sol := &Solution{
		Etas:   []float64{0, 1},
		States: []State{{1, 2}, {3, 4}},
	}

	col := sol.Column(1)
	if col[0] != 2 || col[1] != 4 {
		t.Errorf("unexpected column values: %v", col)
	}
}
