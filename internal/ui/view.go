package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/riv-viewer/riv/internal/rivapi"
	"github.com/riv-viewer/riv/internal/state"
	"github.com/riv-viewer/riv/internal/viewer"
)

// renderMain renders the full UI: header, viewports, optional activity log,
// status line and command bar.
func (m Model) renderMain() string {
	parts := []string{m.renderHeader(), m.renderViewports()}
	if m.showActivity {
		parts = append(parts, m.renderActivity())
	}
	parts = append(parts, m.renderStatus(), m.renderCommandBar())
	return strings.Join(parts, "\n")
}

// renderHeader renders the top bar: service state, binding and address.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	gap := styles.Text.Render("  ")

	parts := []string{styles.Logo.Render("riv")}

	snap := m.snapshot
	switch connectionState(snap) {
	case "online":
		parts = append(parts, styles.SuccessText.Render("● ON"))
	case "offline":
		parts = append(parts,
			styles.DangerText.Render("● OFF"),
			styles.MutedText.Render(truncateEnd(rivapi.Message(snap.LastError), 48)),
		)
	case "retrying":
		parts = append(parts,
			styles.WarningText.Render("● retrying"),
			styles.MutedText.Render(truncateEnd(rivapi.Message(snap.LastError), 48)),
		)
	default:
		parts = append(parts, styles.WarningText.Render("connecting..."))
	}

	binding := styles.MutedText.Render("Binding ") + styles.FaintText.Render("OFF")
	if m.session.BindingEnabled() {
		binding = styles.MutedText.Render("Binding ") + styles.AccentText.Render("ON")
	}
	parts = append(parts, binding)

	if m.width >= LayoutCompactWidth {
		parts = append(parts, styles.FaintText.Render(m.config.APIBind))
		if !m.lastUpdated.IsZero() && !snap.LastUpdated.IsZero() {
			parts = append(parts, styles.FaintText.Render("checked "+humanizeDuration(time.Since(snap.LastUpdated))))
		}
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, gap))
}

// connectionState names the header badge. One failed poll is reported as
// retrying; the service counts as offline only after repeated failures.
func connectionState(snap state.Snapshot) string {
	switch {
	case snap.Online():
		return "online"
	case snap.IsOffline():
		return "offline"
	case snap.LastError != nil:
		return "retrying"
	default:
		return "connecting"
	}
}

// viewportArea returns the rows available to the viewport panes.
func (m Model) viewportArea() int {
	rows := m.height - ChromeLines
	if m.showActivity {
		rows -= ActivityHeight
	}
	return max(rows, PaneChromeLines)
}

func (m Model) renderViewports() string {
	vps := m.session.Viewports()
	area := m.viewportArea()

	if m.width < LayoutStackWidth {
		first := area / 2
		panes := make([]string, 0, len(vps))
		for i, vp := range vps {
			h := first
			if i == len(vps)-1 {
				h = area - first*(len(vps)-1)
			}
			panes = append(panes, m.renderPane(vp.ID, m.width, h))
		}
		return lipgloss.JoinVertical(lipgloss.Left, panes...)
	}

	first := m.width / len(vps)
	panes := make([]string, 0, len(vps))
	for i, vp := range vps {
		w := first
		if i == len(vps)-1 {
			w = m.width - first*(len(vps)-1)
		}
		panes = append(panes, m.renderPane(vp.ID, w, area))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

// paneState names what a viewport is doing, for its badge and colour.
func (m Model) paneState(id viewer.ViewportID) string {
	vp := m.session.Viewport(id)
	switch {
	case m.session.Workflow(id).State == viewer.AwaitingType:
		return "awaiting"
	case m.session.Uploading(id):
		return "uploading"
	case m.paneErrors[id] != "":
		return "error"
	case vp.Loaded() && (vp.Image == nil || m.session.TargetFrame(id) != vp.CurrentFrame):
		return "rendering"
	case vp.Loaded():
		return "loaded"
	default:
		return "empty"
	}
}

// renderPane renders one viewport into a bordered box of the given outer size.
func (m Model) renderPane(id viewer.ViewportID, width, height int) string {
	styles := m.theme.Styles()
	vp := m.session.Viewport(id)
	wf := m.session.Workflow(id)
	state := m.paneState(id)

	innerW := max(width-4, 1)
	bodyH := max(height-PaneChromeLines, 0)

	// Title row
	title := styles.Text.Bold(true).Render(vp.Title)
	if id == m.focus {
		title = styles.AccentText.Bold(true).Render("▸ " + vp.Title)
	}
	titleRow := title + "  " + styles.StateStyle(state).Render(state)

	// File row
	fileName := vp.FileName
	if wf.State != viewer.NoPendingFile {
		fileName = wf.File.Name
	}
	fileRow := styles.FaintText.Render("no file")
	if fileName != "" {
		fileRow = styles.MutedText.Render(truncateMiddle(fileName, innerW))
	}

	body := m.paneBody(id, innerW, bodyH)

	// Slider and label rows
	slider := renderSlider(m.session.TargetFrame(id), vp.TotalFrames, innerW, styles.AccentText, styles.FaintText)
	label := styles.MutedText.Render(vp.FrameLabel())
	if target := m.session.TargetFrame(id); vp.Loaded() && target != vp.CurrentFrame {
		label += styles.InfoText.Render(fmt.Sprintf("  → %d", target+1))
	}
	if m.session.BindingActive(id) {
		label += styles.AccentText.Render("  bound")
	}

	rows := []string{titleRow, fileRow}
	if bodyH > 0 {
		rows = append(rows, body)
	}
	rows = append(rows, slider, label)
	content := strings.Join(rows, "\n")

	box := styles.Pane
	if id == m.focus {
		box = styles.FocusedPane
	}
	return box.Width(width - 2).Height(height - 2).MaxHeight(height).Render(content)
}

// paneBody fills the space between the file row and the slider.
func (m Model) paneBody(id viewer.ViewportID, width, height int) string {
	if height <= 0 {
		return ""
	}
	styles := m.theme.Styles()
	vp := m.session.Viewport(id)
	wf := m.session.Workflow(id)

	var lines []string
	switch {
	case wf.State == viewer.AwaitingType:
		lines = []string{
			styles.WarningText.Render(wf.File.Name + " is an E2E container."),
			"",
			styles.Text.Render("Choose the scan type to extract:"),
			styles.AccentText.Render("[s]") + styles.Text.Render(" SLO   ") +
				styles.AccentText.Render("[o]") + styles.Text.Render(" OCT"),
		}
	case wf.State == viewer.TypeSelected:
		lines = []string{styles.InfoText.Render(fmt.Sprintf("Uploading %s as %s...", wf.File.Name, wf.Selected))}
	case m.session.Uploading(id):
		lines = []string{styles.InfoText.Render("Uploading...")}
	case vp.Image.Pixels() != nil:
		lines = renderPreview(vp.Image.Pixels(), width, height)
	case vp.Loaded():
		lines = []string{styles.InfoText.Render(fmt.Sprintf("Rendering frame %d...", m.session.TargetFrame(id)+1))}
	default:
		lines = []string{
			styles.MutedText.Render("Press f to open a study"),
			styles.FaintText.Render(strings.Join(viewer.AcceptedSuffixes, " ")),
		}
	}

	if msg := m.paneErrors[id]; msg != "" {
		lines = append(lines, "", styles.DangerText.Render(truncateEnd(msg, width)))
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

// renderSlider draws a track of width cells with a knob at frame.
func renderSlider(frame, total, width int, filled, empty lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	if total <= 0 {
		return empty.Render(strings.Repeat("─", width))
	}
	pos := 0
	if total > 1 && width > 1 {
		pos = frame * (width - 1) / (total - 1)
	}
	pos = min(max(pos, 0), width-1)
	return filled.Render(strings.Repeat("━", pos)+"●") + empty.Render(strings.Repeat("─", width-pos-1))
}

// renderStatus shows the prompt while it is open, otherwise the last message.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	if m.promptMode != promptNone {
		return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(m.prompt.View())
	}
	if m.status.text == "" {
		return styles.FaintText.Render("ready")
	}

	style := styles.Text
	switch m.status.tone {
	case toneSuccess:
		style = styles.SuccessText
	case toneError:
		style = styles.DangerText
	}
	stamp := styles.FaintText.Render(m.status.at.Format("15:04:05") + " ")
	return stamp + style.Render(truncateEnd(m.status.text, max(m.width-9, 1)))
}

// renderCommandBar lists the most used keys.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	gap := styles.Text.Render("  ")

	items := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		items = append(items, styles.AccentText.Render(h.Key)+styles.MutedText.Render(" "+h.Desc))
	}
	return styles.Footer.Width(m.width).MaxHeight(1).Render(strings.Join(items, gap))
}
