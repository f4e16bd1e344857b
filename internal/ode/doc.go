// Package ode provides core primitives for integrating boundary-layer
// similarity systems.
//
// The package defines the fundamental interfaces and types for numerical
// solution of ordinary differential equations (ODEs) in the similarity
// coordinate eta:
//
//   - [State]: vector of similarity-transformed flow variables
//   - [System]: interface for autonomous ODE systems (dY/deta = f(Y))
//   - [Integrator]: single-step numerical scheme
//   - [Solver]: marches a system across the eta-domain
//
// # Example
//
//	sys := model.NewSheetFlow()
//	solver := ode.NewSolver(sys, integrators.NewRK45())
//	sol, _ := solver.Solve(ctx, sys.DefaultState(), ode.DefaultConfig())
//
// # Thread Safety
//
// Solver instances are NOT thread-safe. Each integration run should use
// its own Solver; runs share nothing beyond the read-only system.
package ode
