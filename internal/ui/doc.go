// Package ui provides the terminal user interface for riv.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model owns the viewer.Session outright:
// every remote call (upload, frame fetch, convert, extract, probe) runs as a
// tea.Cmd and reports back as a message, and only Update applies the result
// to the session. Stale results are recognised by the session's sequence
// numbers and dropped there, so the UI never needs locks.
//
// # Package Structure
//
//   - app.go: Model, Options, Update dispatch, key handling and Run
//   - actions.go: intake, scan type selection, navigation, binding and export actions
//   - commands.go: tea.Cmd constructors and the messages they produce
//   - view.go: header, viewport panes, slider, status line and command bar
//   - preview.go: half-block rendering of decoded frames
//   - activity.go: the activity pane fed from the log file
//   - help.go: the key binding overlay
//   - keys.go: key bindings
//   - theme.go: colour themes and derived styles
//   - layout.go: layout and timing constants
//
// # Viewports
//
// Two panes are shown side by side, or stacked on narrow terminals. Each pane
// carries a state badge:
//
//   - empty: nothing loaded
//   - awaiting: an E2E file is waiting for its scan type (s or o)
//   - uploading: a study is being sent to the service
//   - rendering: a frame was requested and has not arrived yet
//   - loaded: the requested frame is on screen
//   - error: the last action on the pane failed; the message stays until the next success
//
// A failed upload or render leaves the previous study and frame on screen.
//
// # Event Flow
//
//  1. Run builds the Model and starts the program with the caller's context
//  2. A tick copies the latest state.Snapshot from the health poller
//  3. Key presses start actions, which return commands
//  4. Command results arrive as messages and are committed to the session
//  5. On exit every frame still held by the session is released
//
// # Key Bindings
//
//   - f: Open a file in the focused viewport
//   - s / o: Choose SLO or OCT for a pending E2E file
//   - tab, 1, 2: Change focus
//   - left/right, h/l: Previous or next frame
//   - pgup/pgdown: Ten frames back or forward
//   - home/end: First or last frame
//   - b: Bind the two sliders
//   - esc: Reset the focused viewport, or close the activity pane
//   - t: Test the service connection
//   - x: Convert an E2E file to DICOM
//   - m: Extract metadata and pixels from DICOM files
//   - a: Toggle the activity pane
//   - T: Cycle theme
//   - ?: Help
//   - q or Ctrl+C: Quit
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Client:  client,
//		Store:   store,
//		Config:  &cfg,
//		Logger:  logger,
//	})
package ui
