package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Activity   key.Binding
	Escape     key.Binding

	// Viewport focus
	NextViewport key.Binding
	ViewportOne  key.Binding
	ViewportTwo  key.Binding

	// Study actions
	OpenFile      key.Binding
	SelectSLO     key.Binding
	SelectOCT     key.Binding
	ToggleBinding key.Binding

	// Frame navigation
	PrevFrame  key.Binding
	NextFrame  key.Binding
	PageBack   key.Binding
	PageFwd    key.Binding
	FirstFrame key.Binding
	LastFrame  key.Binding

	// Service tools
	TestConnection key.Binding
	Convert        key.Binding
	Extract        key.Binding

	// Prompt
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Activity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activity log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Reset viewport"),
		),

		// Viewport focus
		NextViewport: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Switch viewport"),
		),
		ViewportOne: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Focus viewport 1"),
		),
		ViewportTwo: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Focus viewport 2"),
		),

		// Study actions
		OpenFile: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Open file"),
		),
		SelectSLO: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Scan type SLO"),
		),
		SelectOCT: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Scan type OCT"),
		),
		ToggleBinding: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Bind sliders"),
		),

		// Frame navigation
		PrevFrame: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "Previous frame"),
		),
		NextFrame: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "Next frame"),
		),
		PageBack: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Back 10 frames"),
		),
		PageFwd: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Forward 10 frames"),
		),
		FirstFrame: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "First frame"),
		),
		LastFrame: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "Last frame"),
		),

		// Service tools
		TestConnection: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Test connection"),
		),
		Convert: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Convert E2E to DICOM"),
		),
		Extract: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Extract metadata"),
		),

		// Prompt
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.OpenFile, k.NextViewport, k.PrevFrame, k.NextFrame,
		k.ToggleBinding, k.TestConnection, k.Activity, k.Help, k.Quit,
	}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Viewports
		{k.NextViewport, k.ViewportOne, k.ViewportTwo, k.OpenFile, k.SelectSLO, k.SelectOCT, k.Escape},
		// Frames
		{k.PrevFrame, k.NextFrame, k.PageBack, k.PageFwd, k.FirstFrame, k.LastFrame, k.ToggleBinding},
		// Service
		{k.TestConnection, k.Convert, k.Extract},
		// General
		{k.Activity, k.CycleTheme, k.Help, k.Quit},
	}
}
