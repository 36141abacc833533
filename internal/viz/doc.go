// Package viz renders verlet scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one scene with mouse input and tuning
//   - [Canvas]: Braille-based pixel canvas, fitted to the world by [Viewport]
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	A     - Toggle scripted input
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//	Tab   - Select parameter, Up/Down to tune it
//
// The left mouse button drives the scene's primary action (spawn, drag,
// cut, fire, drop) and the right button erases.
package viz
