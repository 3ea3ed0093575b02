package today

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2).
			Align(lipgloss.Center)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	activityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Padding(1, 0).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(40).
			Align(lipgloss.Center)

	lockedStyle = activityStyle.
			BorderForeground(lipgloss.Color("42"))
)

// TickMsg fires once a second so the countdown and the daily reset stay current.
type TickMsg time.Time

func Tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	State      models.SelectionState
	MaxRerolls int
	Countdown  string
	width      int
	height     int
}

func New(state models.SelectionState, maxRerolls int, countdown string) Model {
	return Model{State: state, MaxRerolls: maxRerolls, Countdown: countdown}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Set(state models.SelectionState, countdown string) {
	m.State = state
	m.Countdown = countdown
}

func (m Model) View() string {
	var body string
	if !m.State.HasSelection() {
		body = lipgloss.JoinVertical(lipgloss.Center,
			activityStyle.Render(constants.ReadyToRoll),
			mutedStyle.Render("press p to pick"),
		)
	} else {
		style := activityStyle
		status := fmt.Sprintf("%d/%d rerolls left", m.State.RerollsLeft, m.MaxRerolls)
		if m.State.IsLockedIn {
			style = lockedStyle
			status = "🔒 locked in"
		}
		body = lipgloss.JoinVertical(lipgloss.Center,
			style.Render(m.State.SelectedActivity),
			mutedStyle.Render(status),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Today"),
		body,
		mutedStyle.Render(m.Countdown),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
