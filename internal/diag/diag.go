// Package diag computes boundary-layer diagnostics from sampled profiles.
package diag

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the per-curve diagnostics reported in study tables.
type Summary struct {
	DisplacementThickness float64 `json:"displacement_thickness"`
	MomentumThickness     float64 `json:"momentum_thickness"`
	WallVelocityGradient  float64 `json:"wall_velocity_gradient"`
	ThermalDecayRate      float64 `json:"thermal_decay_rate"`
}

func Summarize(etas, fprime, theta []float64) Summary {
	return Summary{
		DisplacementThickness: DisplacementThickness(etas, fprime),
		MomentumThickness:     MomentumThickness(etas, fprime),
		WallVelocityGradient:  WallGradient(etas, fprime),
		ThermalDecayRate:      DecayRate(etas, theta),
	}
}

// DisplacementThickness integrates (1 - F') across the sampled domain.
func DisplacementThickness(etas, fprime []float64) float64 {
	if len(etas) < 2 {
		return 0
	}
	deficit := append([]float64(nil), fprime...)
	floats.Scale(-1, deficit)
	floats.AddConst(1, deficit)
	return integrate.Trapezoidal(etas, deficit)
}

// MomentumThickness integrates F'(1 - F').
func MomentumThickness(etas, fprime []float64) float64 {
	if len(etas) < 2 {
		return 0
	}
	deficit := append([]float64(nil), fprime...)
	floats.Scale(-1, deficit)
	floats.AddConst(1, deficit)
	floats.Mul(deficit, fprime)
	return integrate.Trapezoidal(etas, deficit)
}

// WallGradient is the one-sided finite difference of col at eta=0.
func WallGradient(etas, col []float64) float64 {
	if len(etas) < 2 {
		return 0
	}
	return (col[1] - col[0]) / (etas[1] - etas[0])
}

// DecayRate fits ln(theta) against eta and returns the slope. For a pure
// exponential profile theta = exp(-k*eta) this recovers -k.
func DecayRate(etas, theta []float64) float64 {
	xs := make([]float64, 0, len(etas))
	logs := make([]float64, 0, len(theta))
	for i, v := range theta {
		if v <= 0 {
			continue
		}
		xs = append(xs, etas[i])
		logs = append(logs, math.Log(v))
	}
	if len(xs) < 2 {
		return 0
	}
	_, slope := stat.LinearRegression(xs, logs, nil, false)
	return slope
}
