package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riv-viewer/riv/internal/rivapi"
	"github.com/riv-viewer/riv/internal/viewer"
)

type tone int

const (
	toneInfo tone = iota
	toneSuccess
	toneError
)

// statusLine is the one-line message under the viewports.
type statusLine struct {
	text string
	tone tone
	at   time.Time
}

func (m *Model) setStatus(t tone, text string) {
	m.status = statusLine{text: text, tone: t, at: time.Now()}
}

// fail surfaces a failed action. Failures never change session state; the
// session transition that produced err has already been applied.
func (m *Model) fail(err error) {
	var verr *viewer.Error
	if errors.As(err, &verr) && verr.Viewport != 0 {
		m.paneErrors[verr.Viewport] = verr.UserMessage()
	}
	m.setStatus(toneError, err.Error())
	m.logger.Warn("action failed", "kind", viewer.KindOf(err).String(), "error", err)
}

// explain turns a refused transition into a hint.
func (m *Model) explain(id viewer.ViewportID, err error) {
	switch {
	case errors.Is(err, viewer.ErrAwaitingClassification):
		m.setStatus(toneInfo, fmt.Sprintf("viewport %d is waiting for a scan type: s for SLO, o for OCT", id))
	case errors.Is(err, viewer.ErrNotLoaded):
		m.setStatus(toneInfo, fmt.Sprintf("viewport %d has no study; press f to open one", id))
	case errors.Is(err, viewer.ErrNoPendingFile):
		m.setStatus(toneInfo, fmt.Sprintf("viewport %d has no E2E file waiting for a scan type", id))
	case errors.Is(err, viewer.ErrTypeAlreadySelected):
		wf := m.session.Workflow(id)
		m.setStatus(toneInfo, fmt.Sprintf("%s is already uploading as %s", wf.File.Name, wf.Selected))
	default:
		m.setStatus(toneError, err.Error())
	}
}

// Prompt

func (m Model) openPrompt(mode promptMode) (Model, tea.Cmd) {
	m.promptMode = mode
	m.prompt.SetValue("")
	switch mode {
	case promptConvert:
		m.prompt.Prompt = "convert › "
		m.prompt.Placeholder = "path to an .e2e file"
	case promptExtract:
		m.prompt.Prompt = "extract › "
		m.prompt.Placeholder = "one or more .dcm paths, comma separated"
	default:
		m.prompt.Prompt = fmt.Sprintf("open in viewport %d › ", m.focus)
		m.prompt.Placeholder = "path to a " + strings.Join(viewer.AcceptedSuffixes, " ") + " file"
	}
	return m, m.prompt.Focus()
}

func (m Model) closePrompt() Model {
	m.promptMode = promptNone
	m.prompt.Blur()
	m.prompt.SetValue("")
	return m
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m = m.closePrompt()
		m.setStatus(toneInfo, "cancelled")
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		mode, value := m.promptMode, m.prompt.Value()
		m = m.closePrompt()
		switch mode {
		case promptConvert:
			return m.convert(value)
		case promptExtract:
			return m.extract(value)
		default:
			return m.openFile(value)
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// Intake

// openFile classifies input and starts the matching pipeline in the focused
// viewport.
func (m Model) openFile(input string) (Model, tea.Cmd) {
	file, err := rawFile(input)
	if err != nil {
		m.setStatus(toneError, err.Error())
		return m, nil
	}

	route, err := viewer.Classify(file.Name)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	if _, err := os.Stat(file.Path); err != nil {
		m.setStatus(toneError, fmt.Sprintf("cannot open %s: %v", file.Name, errors.Unwrap(err)))
		return m, nil
	}

	id := m.focus
	delete(m.paneErrors, id)

	if route == viewer.RouteE2EPending {
		m.session = m.session.BeginE2E(id, file)
		m.logger.Info("e2e awaiting scan type", "viewport", int(id), "file", file.Name)
		m.setStatus(toneInfo, fmt.Sprintf("%s: choose scan type, s for SLO or o for OCT", file.Name))
		return m, nil
	}

	var ticket viewer.UploadTicket
	m.session, ticket = m.session.BeginUpload(id, file)
	m.setStatus(toneInfo, fmt.Sprintf("uploading %s to viewport %d", file.Name, id))
	return m, uploadStudyCmd(m.ctx, m.client, m.logger, ticket, file)
}

func (m Model) selectType(t viewer.ScanType) (Model, tea.Cmd) {
	id := m.focus
	next, up, err := m.session.SelectType(id, t)
	if err != nil {
		m.explain(id, err)
		return m, nil
	}
	m.session = next
	delete(m.paneErrors, id)
	m.setStatus(toneInfo, fmt.Sprintf("uploading %s as %s", up.File.Name, up.Type))
	return m, uploadE2ECmd(m.ctx, m.client, m.logger, up)
}

func (m Model) handleUploadDone(msg uploadDoneMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		next, err := m.session.FailUpload(msg.ticket, msg.err)
		m.session = next
		if err != nil {
			m.fail(err)
		}
		return m, nil
	}

	next, req, err := m.session.LoadStudy(msg.ticket, msg.file, msg.info)
	if errors.Is(err, viewer.ErrSuperseded) {
		m.logger.Debug("stale upload dropped", "viewport", int(msg.ticket.Viewport), "seq", msg.ticket.Seq)
		return m, nil
	}
	m.session = next
	if err != nil {
		m.fail(err)
		return m, nil
	}
	m.setStatus(toneSuccess, fmt.Sprintf("%s loaded in viewport %d, %d frames", msg.file.Name, req.Viewport, msg.info.Frames))
	return m, m.render(req)
}

func (m Model) handleE2EDone(msg e2eDoneMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		next, err := m.session.E2EFailed(msg.upload, msg.err)
		m.session = next
		if err != nil {
			m.fail(err)
		}
		return m, nil
	}

	next, req, err := m.session.E2EUploaded(msg.upload, msg.info)
	if errors.Is(err, viewer.ErrSuperseded) {
		m.logger.Debug("stale e2e upload dropped", "viewport", int(msg.upload.Ticket.Viewport), "seq", msg.upload.Ticket.Seq)
		return m, nil
	}
	m.session = next
	if err != nil {
		m.fail(err)
		return m, nil
	}
	m.setStatus(toneSuccess, fmt.Sprintf("%s (%s) loaded in viewport %d, %d frames", msg.upload.File.Name, msg.upload.Type, req.Viewport, msg.info.Frames))
	return m, m.render(req)
}

// Frames

func (m Model) render(req viewer.RenderRequest) tea.Cmd {
	return renderFrameCmd(m.ctx, m.client, m.pool, m.logger, req)
}

func (m Model) step(delta int) (Model, tea.Cmd) {
	return m.seek(m.session.TargetFrame(m.focus) + delta)
}

// seek moves the focused viewport to frame, and its partner too when the
// sliders are bound.
func (m Model) seek(frame int) (Model, tea.Cmd) {
	id := m.focus
	vp := m.session.Viewport(id)
	if vp.Loaded() {
		frame = vp.ClampFrame(frame)
		settled := frame == m.session.TargetFrame(id) && vp.Image != nil
		if settled && m.session.BindingActive(id) {
			settled = frame == m.session.TargetFrame(m.session.Partner(id))
		}
		if settled {
			return m, nil
		}
	}

	next, reqs, err := m.session.Navigate(id, frame)
	if err != nil {
		m.explain(id, err)
		return m, nil
	}
	m.session = next

	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, m.render(req))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleFrame(msg frameMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		next, err := m.session.FailRender(msg.req, msg.err)
		m.session = next
		if err != nil {
			m.fail(err)
		}
		return m, nil
	}

	next, ok := m.session.CommitRender(viewer.RenderResult{Request: msg.req, Image: msg.image})
	m.session = next
	if ok {
		delete(m.paneErrors, msg.req.Viewport)
	}
	return m, nil
}

func (m Model) toggleBinding() (Model, tea.Cmd) {
	on := !m.session.BindingEnabled()
	if on && !m.session.BindingAvailable() {
		m.setStatus(toneInfo, "binding needs a study in both viewports")
		return m, nil
	}
	m.session = m.session.SetBinding(on)
	m.logger.Info("slider binding changed", "enabled", on)

	switch {
	case !on:
		m.setStatus(toneInfo, "sliders unbound")
	case !m.session.BindingActive(m.focus):
		a, b := m.session.Viewport(viewer.ViewportOne), m.session.Viewport(viewer.ViewportTwo)
		m.setStatus(toneInfo, fmt.Sprintf("sliders bound, but %d and %d frames differ so navigation stays independent", a.TotalFrames, b.TotalFrames))
	default:
		m.setStatus(toneInfo, "sliders bound")
	}
	return m, nil
}

func (m Model) resetFocused() (Model, tea.Cmd) {
	id := m.focus
	m.session = m.session.Reset(id)
	delete(m.paneErrors, id)
	m.logger.Info("viewport reset", "viewport", int(id))
	m.setStatus(toneInfo, fmt.Sprintf("viewport %d cleared", id))
	return m, nil
}

// Service tools

func (m Model) testConnection() (Model, tea.Cmd) {
	m.setStatus(toneInfo, "testing connection to "+m.config.APIBind)
	return m, probeCmd(m.ctx, m.client, m.logger)
}

func (m Model) handleProbe(msg probeMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(toneError, "connection test failed: "+rivapi.Message(msg.err))
		return m, nil
	}
	m.setStatus(toneSuccess, fmt.Sprintf("service answered in %s: %s", msg.elapsed.Round(time.Millisecond), msg.message))
	return m, nil
}

func (m Model) convert(input string) (Model, tea.Cmd) {
	if m.exporting != "" {
		m.setStatus(toneInfo, m.exporting+" still running")
		return m, nil
	}
	file, err := rawFile(input)
	if err != nil {
		m.setStatus(toneError, err.Error())
		return m, nil
	}
	route, err := viewer.Classify(file.Name)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	if route != viewer.RouteE2EPending {
		m.setStatus(toneError, fmt.Sprintf("convert needs an .e2e file, got %s", file.Name))
		return m, nil
	}

	m.exporting = "convert"
	m.setStatus(toneInfo, fmt.Sprintf("converting %s to DICOM", file.Name))
	return m, convertCmd(m.ctx, m.client, m.logger, m.config.DownloadDir, file)
}

func (m Model) extract(input string) (Model, tea.Cmd) {
	if m.exporting != "" {
		m.setStatus(toneInfo, m.exporting+" still running")
		return m, nil
	}
	var files []viewer.RawFile
	for _, part := range strings.Split(input, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		file, err := rawFile(part)
		if err != nil {
			m.setStatus(toneError, err.Error())
			return m, nil
		}
		if _, err := viewer.Classify(file.Name); err != nil {
			m.fail(err)
			return m, nil
		}
		if !strings.EqualFold(filepath.Ext(file.Name), ".dcm") {
			m.setStatus(toneError, fmt.Sprintf("extract needs .dcm files, got %s", file.Name))
			return m, nil
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		m.setStatus(toneError, "no files given")
		return m, nil
	}

	m.exporting = "extract"
	m.setStatus(toneInfo, fmt.Sprintf("extracting metadata from %d file(s)", len(files)))
	return m, extractCmd(m.ctx, m.client, m.logger, m.config.DownloadDir, files)
}

func (m Model) handleExportDone(msg exportDoneMsg) (Model, tea.Cmd) {
	m.exporting = ""
	if msg.err != nil {
		m.setStatus(toneError, msg.op+" failed: "+rivapi.Message(msg.err))
		return m, nil
	}
	m.setStatus(toneSuccess, fmt.Sprintf("saved %s (%d files)", msg.result.Path, len(msg.result.Entries)))
	return m, nil
}
