package sweep

import (
	"fmt"
	"sort"

	"github.com/nadeemsk/sheetflow/internal/integrators"
	"github.com/nadeemsk/sheetflow/internal/ode"
)

type Registry struct {
	integrators map[string]func() ode.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() ode.Integrator),
	}

	r.integrators["euler"] = func() ode.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() ode.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() ode.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetIntegrator(name string) (ode.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
