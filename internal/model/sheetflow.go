package model

import (
	"fmt"

	"github.com/nadeemsk/sheetflow/internal/ode"
)

// State component indices.
const (
	IdxF = iota
	IdxFPrime
	IdxG
	IdxGPrime
	IdxTheta
)

// SheetFlow holds the similarity-transformed boundary-layer equations for
// flow over a stretching sheet with magnetic and thermal effects.
//
// The state vector is [F, F', G, G', theta]: the stream-function
// similarity variable and its derivative (primary velocity), the
// cross-flow velocity pair, and the temperature. We and Lambda are
// carried for the parameter interface; the reduced equations couple only
// Beta and Factor.
type SheetFlow struct {
	We     float64 // Weissenberg number
	Beta   float64 // magnetic Prandtl number
	Lambda float64 // magnetic number
	Factor float64 // fluid-composition perturbation
}

func NewSheetFlow() *SheetFlow {
	return &SheetFlow{
		We:     0.5,
		Beta:   0.5,
		Lambda: 0.5,
		Factor: 1.0,
	}
}

func (s *SheetFlow) Dim() int { return 5 }

func (s *SheetFlow) Derive(y ode.State, _ float64) ode.State {
	if len(y) < 5 {
		return make(ode.State, 5)
	}
	fp, gp, th := y[1], y[3], y[4]
	return ode.State{
		fp,
		-fp*fp + fp - s.Beta*gp*gp*s.Factor,
		gp,
		-gp*gp + gp*s.Factor,
		-th * s.Factor,
	}
}

// DefaultState is the wall condition at eta=0.
func (s *SheetFlow) DefaultState() ode.State { return ode.State{0, 1, 0, 1, 1} }

func (s *SheetFlow) GetParams() map[string]float64 {
	return map[string]float64{
		"we":     s.We,
		"beta":   s.Beta,
		"lambda": s.Lambda,
		"factor": s.Factor,
	}
}

func (s *SheetFlow) SetParam(name string, value float64) error {
	switch name {
	case "we":
		s.We = value
	case "beta":
		s.Beta = value
	case "lambda":
		s.Lambda = value
	case "factor":
		s.Factor = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
