// Package viz renders boundary layer profiles as publication figures and
// provides an interactive terminal view of the marching solver.
//
//   - [Figure] and [Series]: labeled profile curves ready for rendering
//   - [Renderer]: high-resolution PNG output backed by gonum/plot
//   - [Preview]: compact ANSI chart for quick terminal inspection
//   - [Model]: Bubble Tea TUI that marches a profile live
//
// # Key Bindings
//
//	Space  - Pause/Resume the march
//	R      - Restart from the wall with initial parameters
//	P      - Cycle displayed profile (F', G, θ)
//	Tab    - Select parameter
//	Up/K   - Increase selected parameter (+5%)
//	Down/J - Decrease selected parameter (-5%)
//	Q      - Quit
package viz
