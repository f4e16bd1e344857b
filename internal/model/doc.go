// Package model provides the boundary-layer similarity system for
// stretching-sheet flow.
//
// [SheetFlow] implements the [ode.System] interface, defining the reduced
// similarity equations for the primary velocity, the cross-flow velocity
// and the temperature profile. It also implements [ode.Configurable] for
// parameter binding during sweeps.
package model
