package integrators

import (
	"math"

	"github.com/nadeemsk/sheetflow/internal/ode"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an embedded Dormand-Prince 5(4) pair, suited to the moderately
// stiff similarity equations.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(sys ode.System, y ode.State, eta, h float64) ode.State {
	yNew, _ := r.advance(sys, y, eta, h, ode.Tolerances{Rel: 1e-6, Abs: 1e-9})
	return yNew
}

// StepAdaptive attempts one step of size h. On acceptance it returns the
// advanced state and a suggested next step; on rejection it returns a nil
// state, a reduced step to retry, and ode.ErrToleranceNotMet.
func (r *RK45) StepAdaptive(sys ode.System, y ode.State, eta, h float64, tol ode.Tolerances) (ode.State, float64, error) {
	yNew, errMax := r.advance(sys, y, eta, h, tol)

	if errMax > 1 {
		shrink := math.Max(r.minScale, r.safety*math.Pow(errMax, -0.25))
		return nil, h * shrink, ode.ErrToleranceNotMet
	}

	var hNext float64
	if errMax > 0 {
		grow := math.Min(r.maxScale, r.safety*math.Pow(errMax, -0.2))
		hNext = h * grow
	} else {
		hNext = h * r.maxScale
	}
	return yNew, hNext, nil
}

// advance computes one Dormand-Prince step and the maximum component-wise
// error ratio against the given tolerances (<=1 means acceptable).
func (r *RK45) advance(sys ode.System, y ode.State, eta, h float64, tol ode.Tolerances) (ode.State, float64) {
	n := len(y)

	k1 := sys.Derive(y, eta)

	y2 := make(ode.State, n)
	for i := 0; i < n; i++ {
		y2[i] = y[i] + h*b21*k1[i]
	}
	k2 := sys.Derive(y2, eta+a2*h)

	y3 := make(ode.State, n)
	for i := 0; i < n; i++ {
		y3[i] = y[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(y3, eta+a3*h)

	y4 := make(ode.State, n)
	for i := 0; i < n; i++ {
		y4[i] = y[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(y4, eta+a4*h)

	y5 := make(ode.State, n)
	for i := 0; i < n; i++ {
		y5[i] = y[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(y5, eta+a5*h)

	y6 := make(ode.State, n)
	for i := 0; i < n; i++ {
		y6[i] = y[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(y6, eta+h)

	yNew := make(ode.State, n)
	for i := 0; i < n; i++ {
		yNew[i] = y[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := sys.Derive(yNew, eta+h)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := tol.Scale(y[i], h*k1[i])
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return yNew, errMax
}
