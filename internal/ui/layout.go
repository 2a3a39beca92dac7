package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutStackWidth is the width below which viewports stack vertically.
	LayoutStackWidth = 90

	// LayoutCompactWidth is the width below which the header drops the API address.
	LayoutCompactWidth = 100
)

// Pane sizing.
const (
	// ChromeLines covers the header, status line and command bar.
	ChromeLines = 3

	// PaneChromeLines covers a viewport pane's border, title, file and slider rows.
	PaneChromeLines = 6

	// ActivityHeight is the number of rows given to the activity log when shown.
	ActivityHeight = 10

	// FrameStep is how far pgup/pgdown move.
	FrameStep = 10
)

// Activity log limits.
const (
	// ActivityLines is the number of log lines read into the activity pane.
	ActivityLines = 400
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// ProbeTimeout bounds the on-demand connection test.
	ProbeTimeout = 5 * time.Second
)
