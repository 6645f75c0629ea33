// Package viz renders gravity simulations in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live stepping of a solver with a candidate body cursor and a
//     dotted trajectory preview
//   - [Picker]: preset selection that opens a [Model]
//   - [Canvas]: Braille-based pixel canvas
//   - [Viewport]: world to canvas mapping
//
// # Key Bindings
//
//	Arrows  - Move candidate
//	WASD    - Aim candidate velocity
//	+/-     - Candidate mass up/down by 10
//	C       - Toggle candidate pinned
//	Enter   - Add candidate to the simulation
//	U       - Remove last body
//	Bksp    - Remove all bodies
//	V       - Toggle velocity/force vectors
//	Space   - Pause/Resume
//	< >     - Slow down / speed up time
//	Z X F   - Zoom in / zoom out / fit view
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
