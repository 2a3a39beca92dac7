package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/riv-viewer/riv/internal/logtail"
)

// resize fits the prompt and activity log to the terminal.
func (m *Model) resize() {
	m.prompt.Width = max(m.width-30, 10)
	m.activity.Width = max(m.width-4, 1)
	m.activity.Height = max(ActivityHeight-2, 1)
}

// handleActivity replaces the activity log content, staying pinned to the
// bottom unless the user scrolled up.
func (m *Model) handleActivity(msg activityMsg) {
	if msg.err != nil {
		m.activity.SetContent(m.theme.LevelStyle("ERROR").Render("activity log unavailable: " + msg.err.Error()))
		return
	}
	follow := m.activity.AtBottom() || m.activity.TotalLineCount() == 0
	m.activity.SetContent(m.formatActivity(msg.lines))
	if follow {
		m.activity.GotoBottom()
	}
}

func (m Model) formatActivity(lines []string) string {
	if len(lines) == 0 {
		return m.theme.Styles().FaintText.Render("nothing logged yet")
	}
	width := max(m.activity.Width, 1)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		entry := logtail.Parse(line)
		out = append(out, m.theme.LevelStyle(entry.Level).Render(truncateEnd(logtail.Compact(entry), width)))
	}
	return strings.Join(out, "\n")
}

func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Activity") + styles.FaintText.Render("  "+truncateMiddle(m.config.LogFile, max(m.width-20, 10)))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderMuted)).
		Padding(0, 1).
		Width(max(m.width-2, 1))
	return box.Render(title + "\n" + m.activity.View())
}
