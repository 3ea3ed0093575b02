package tui

import "github.com/charmbracelet/lipgloss"

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	historyDayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(12)

	historyTimeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("62")).
				Width(7)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)
