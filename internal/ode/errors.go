package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("ode: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates the initial state does not match the system.
	ErrDimensionMismatch = errors.New("ode: state dimension does not match system")

	// ErrStepTooSmall indicates adaptive step control shrank below the minimum.
	ErrStepTooSmall = errors.New("ode: adaptive step below minimum")

	// ErrToleranceNotMet signals a rejected adaptive step; the solver retries
	// with the reduced step size.
	ErrToleranceNotMet = errors.New("ode: local error exceeds tolerance")

	// ErrMaxSteps indicates the step limit was hit before reaching EtaMax.
	ErrMaxSteps = errors.New("ode: maximum step count exceeded before domain end")
)

// SolveError wraps an error with the position in the run where it occurred.
type SolveError struct {
	Eta     float64
	Step    int
	State   State
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("step %d (eta=%.4f): %v", e.Step, e.Eta, e.Wrapped)
}

func (e *SolveError) Unwrap() error {
	return e.Wrapped
}
