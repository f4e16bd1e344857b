package integrators

import "github.com/nadeemsk/sheetflow/internal/ode"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys ode.System, y ode.State, eta float64, h float64) ode.State {
	dy := sys.Derive(y, eta)
	result := make(ode.State, len(y))
	for i := range y {
		result[i] = y[i] + h*dy[i]
	}
	return result
}
