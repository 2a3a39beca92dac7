package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riv-viewer/riv/internal/config"
	"github.com/riv-viewer/riv/internal/prefs"
	"github.com/riv-viewer/riv/internal/rivapi"
	"github.com/riv-viewer/riv/internal/state"
	"github.com/riv-viewer/riv/internal/viewer"
)

// promptMode is what the path prompt is collecting.
type promptMode int

const (
	promptNone promptMode = iota
	promptOpen
	promptConvert
	promptExtract
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    rivapi.Service
	Store     *state.Store
	Config    *config.Config
	Logger    *slog.Logger
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea. It is the only owner of
// the viewer session; remote calls run as commands and report back as
// messages.
type Model struct {
	// Configuration
	ctx       context.Context
	client    rivapi.Service
	store     *state.Store
	config    *config.Config
	logger    *slog.Logger
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	showHelp bool

	// Viewer state
	session    viewer.Session
	pool       *viewer.ImagePool
	focus      viewer.ViewportID
	paneErrors map[viewer.ViewportID]string

	// Service state
	snapshot    state.Snapshot
	lastUpdated time.Time
	exporting   string // op of the convert/extract in flight

	status statusLine

	// Path prompt
	prompt     textinput.Model
	promptMode promptMode

	// Activity log
	showActivity bool
	activity     viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	prompt := textinput.New()
	prompt.CharLimit = 4096

	return Model{
		ctx:        ctx,
		client:     opts.Client,
		store:      opts.Store,
		config:     cfg,
		logger:     logger,
		prefsPath:  prefsPath,
		pollTick:   pollTick,
		theme:      GetTheme(themeName),
		keys:       DefaultKeyMap(),
		session:    viewer.NewSession(),
		pool:       &viewer.ImagePool{},
		focus:      viewer.ViewportOne,
		paneErrors: make(map[viewer.ViewportID]string),
		prompt:     prompt,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.activity = viewport.New(msg.Width, ActivityHeight)
		}
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		return m, nil

	case uploadDoneMsg:
		return m.handleUploadDone(msg)

	case e2eDoneMsg:
		return m.handleE2EDone(msg)

	case frameMsg:
		return m.handleFrame(msg)

	case probeMsg:
		return m.handleProbe(msg)

	case exportDoneMsg:
		return m.handleExportDone(msg)

	case activityMsg:
		m.handleActivity(msg)
		return m, nil
	}

	// Cursor blinks and other prompt traffic
	if m.promptMode != promptNone {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.promptMode != promptNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()

	case key.Matches(msg, m.keys.Activity):
		m.showActivity = !m.showActivity
		m.resize()
		if m.showActivity {
			return m, readActivityCmd(m.config.LogFile)
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.showActivity {
			m.showActivity = false
			m.resize()
			return m, nil
		}
		return m.resetFocused()

	case key.Matches(msg, m.keys.NextViewport):
		m.focus = m.session.Partner(m.focus)
		return m, nil

	case key.Matches(msg, m.keys.ViewportOne):
		m.focus = viewer.ViewportOne
		return m, nil

	case key.Matches(msg, m.keys.ViewportTwo):
		m.focus = viewer.ViewportTwo
		return m, nil

	case key.Matches(msg, m.keys.OpenFile):
		return m.openPrompt(promptOpen)

	case key.Matches(msg, m.keys.SelectSLO):
		return m.selectType(viewer.ScanSLO)

	case key.Matches(msg, m.keys.SelectOCT):
		return m.selectType(viewer.ScanOCT)

	case key.Matches(msg, m.keys.ToggleBinding):
		return m.toggleBinding()

	case key.Matches(msg, m.keys.PrevFrame):
		return m.step(-1)

	case key.Matches(msg, m.keys.NextFrame):
		return m.step(1)

	case key.Matches(msg, m.keys.PageBack):
		return m.step(-FrameStep)

	case key.Matches(msg, m.keys.PageFwd):
		return m.step(FrameStep)

	case key.Matches(msg, m.keys.FirstFrame):
		return m.seek(0)

	case key.Matches(msg, m.keys.LastFrame):
		return m.seek(m.session.Viewport(m.focus).TotalFrames - 1)

	case key.Matches(msg, m.keys.TestConnection):
		return m.testConnection()

	case key.Matches(msg, m.keys.Convert):
		return m.openPrompt(promptConvert)

	case key.Matches(msg, m.keys.Extract):
		return m.openPrompt(promptExtract)
	}

	// Remaining keys scroll the activity log
	if m.showActivity {
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.showActivity {
		cmds = append(cmds, readActivityCmd(m.config.LogFile))
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// cycleTheme switches to the next theme and remembers it.
func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath != "" {
		if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
			m.logger.Warn("save preferences failed", "path", m.prefsPath, "error", err)
			m.setStatus(toneError, "theme not saved: "+err.Error())
			return m, nil
		}
	}
	m.setStatus(toneInfo, "theme "+m.theme.Name)
	if m.showActivity {
		return m, readActivityCmd(m.config.LogFile)
	}
	return m, nil
}

// Run starts the Bubble Tea program. Once it exits, outstanding requests are
// cancelled and every frame is released, whether on screen or still arriving.
func Run(opts Options) error {
	m := New(opts)
	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()
	m.ctx = ctx

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	cancel()
	if fm, ok := final.(Model); ok {
		fm.session.Close()
	}
	if n := m.pool.Close(); n > 0 {
		m.logger.Debug("released undelivered frames", "count", n)
	}
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		// Cancelled by a signal: a normal shutdown.
		return nil
	}
	return err
}
