package sweep

import (
	"context"
	"fmt"

	"github.com/nadeemsk/sheetflow/internal/config"
	"github.com/nadeemsk/sheetflow/internal/diag"
	"github.com/nadeemsk/sheetflow/internal/model"
	"github.com/nadeemsk/sheetflow/internal/ode"
)

// Curve is one integration run within a study.
type Curve struct {
	Label  string
	Param  float64
	Factor float64
	Etas   []float64
	Values []float64
	Sol    *ode.Solution
	Diag   diag.Summary
}

// StudyResult collects the curves of one figure.
type StudyResult struct {
	Study   config.Study
	Param   config.Param
	Profile Profile
	Curves  []Curve
}

// Runner executes parameter studies against an immutable configuration.
type Runner struct {
	cfg      *config.Config
	registry *Registry
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

func (r *Runner) solverConfig() ode.Config {
	sc := ode.DefaultConfig()
	sc.EtaMax = r.cfg.Solver.EtaMax
	sc.Step = r.cfg.Solver.InitStep
	sc.MaxStep = r.cfg.Solver.MaxStep
	sc.Tol = ode.Tolerances{Rel: r.cfg.Solver.RelTol, Abs: r.cfg.Solver.AbsTol}
	return sc
}

// RunStudy integrates one curve per configured factor. Curve i sweeps the
// studied parameter via Pick while factor and label come straight from
// the factor tables. Any curve failure aborts the study.
func (r *Runner) RunStudy(ctx context.Context, study config.Study) (*StudyResult, error) {
	param, ok := r.cfg.Param(study.Param)
	if !ok {
		return nil, fmt.Errorf("unknown parameter: %s", study.Param)
	}
	profile, err := ParseProfile(study.Profile)
	if err != nil {
		return nil, err
	}

	res := &StudyResult{
		Study:   study,
		Param:   param,
		Profile: profile,
		Curves:  make([]Curve, 0, len(r.cfg.Factors)),
	}

	for i := 1; i <= len(r.cfg.Factors); i++ {
		value := Pick(param.Values, i)
		factor := r.cfg.Factors[i-1]
		label := r.cfg.Labels[i-1]

		curve, err := r.runCurve(ctx, study.Param, value, factor, label, profile)
		if err != nil {
			return nil, fmt.Errorf("%s curve %d (%s=%.2f): %w", study.File, i, param.Key, value, err)
		}
		res.Curves = append(res.Curves, *curve)
	}

	return res, nil
}

func (r *Runner) runCurve(ctx context.Context, paramKey string, value, factor float64, label string, profile Profile) (*Curve, error) {
	sys := model.NewSheetFlow()
	sys.Factor = factor

	// Hold the model-bound parameters at their configured table heads
	// before overriding the studied one. hs and omega_a are tabulated and
	// swept too, but the reduced equations carry no matching coefficient;
	// only we/beta/lambda bind to the model.
	for _, key := range []string{"we", "beta", "lambda"} {
		if p, ok := r.cfg.Param(key); ok {
			if err := sys.SetParam(key, p.Baseline()); err != nil {
				return nil, err
			}
		}
	}
	switch paramKey {
	case "we", "beta", "lambda":
		if err := sys.SetParam(paramKey, value); err != nil {
			return nil, err
		}
	}

	integ, err := r.registry.GetIntegrator(r.cfg.Solver.Integrator)
	if err != nil {
		return nil, err
	}

	solver := ode.NewSolver(sys, integ)
	sol, err := solver.Solve(ctx, sys.DefaultState(), r.solverConfig())
	if err != nil {
		return nil, err
	}

	return &Curve{
		Label:  label,
		Param:  value,
		Factor: factor,
		Etas:   sol.Etas,
		Values: sol.Column(profile.Column()),
		Sol:    sol,
		Diag:   diag.Summarize(sol.Etas, sol.Column(model.IdxFPrime), sol.Column(model.IdxTheta)),
	}, nil
}

// RunAll executes every configured study in order.
func (r *Runner) RunAll(ctx context.Context) ([]*StudyResult, error) {
	results := make([]*StudyResult, 0, len(r.cfg.Studies))

	for i, study := range r.cfg.Studies {
		fmt.Printf("study %d/%d: %s\n", i+1, len(r.cfg.Studies), study.File)

		res, err := r.RunStudy(ctx, study)
		if err != nil {
			return results, fmt.Errorf("study %d: %w", i+1, err)
		}
		results = append(results, res)
	}

	return results, nil
}
