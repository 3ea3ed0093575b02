package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/riseroll/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = m.today.View()
	case StateActivities:
		content = docStyle.Render(m.activities.View())
	case StateHistory:
		content = docStyle.Render(m.viewHistory())
	case StateAddActivity, StateEditActivity:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	var message string
	if m.message != "" {
		message = warningStyle.Render(m.message)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		message,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Today", "Activities", "History"} {
		active := m.state == SessionState(i) ||
			(i == int(StateActivities) && m.state > StateHistory)
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHistory() string {
	if len(m.history) == 0 {
		return "No picks yet."
	}
	var b strings.Builder
	for _, e := range m.history {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			historyDayStyle.Render(e.Day),
			historyTimeStyle.Render(e.Timestamp.Local().Format(constants.TimeFormat)),
			e.Activity,
		))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete this activity?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
