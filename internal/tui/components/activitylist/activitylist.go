package activitylist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
)

type AddActivityMsg struct{}

type EditActivityMsg struct {
	Activity models.Activity
}

type DeleteActivityMsg struct {
	ID string
}

type RestoreActivityMsg struct {
	ID string
}

// UndoDeleteMsg asks for the most recently deleted activity to come back.
type UndoDeleteMsg struct{}

type Item struct {
	Activity models.Activity
}

func (i Item) Title() string {
	if i.Activity.DeletedAt != nil {
		return "👻 " + i.Activity.Name + " (deleted)"
	}
	return i.Activity.Name
}

func (i Item) Description() string {
	if i.Activity.DeletedAt != nil {
		return "deleted " + i.Activity.DeletedAt.Local().Format(constants.DateFormat) + " | can restore with 'r'"
	}
	return "added " + i.Activity.CreatedAt.Local().Format(constants.DateFormat)
}

func (i Item) FilterValue() string { return i.Activity.Name }

type KeyMap struct {
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Restore key.Binding
	Undo    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(activities []models.Activity, width, height int) Model {
	l := list.New(items(activities), list.NewDefaultDelegate(), width, height)
	l.Title = "Activities"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Undo}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete, keys.Restore, keys.Undo}
	}

	return Model{list: l, keys: keys}
}

func items(activities []models.Activity) []list.Item {
	out := make([]list.Item, len(activities))
	for i, a := range activities {
		out[i] = Item{Activity: a}
	}
	return out
}

// SetActivities replaces the list contents. Live activities come first.
func (m *Model) SetActivities(live, deleted []models.Activity) {
	all := make([]models.Activity, 0, len(live)+len(deleted))
	all = append(all, live...)
	all = append(all, deleted...)
	m.list.SetItems(items(all))
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddActivityMsg{} }
		case key.Matches(msg, m.keys.Undo):
			return m, func() tea.Msg { return UndoDeleteMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Activity.DeletedAt == nil {
				return m, func() tea.Msg { return EditActivityMsg(i) }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Activity.DeletedAt == nil {
				return m, func() tea.Msg { return DeleteActivityMsg{ID: i.Activity.ID} }
			}
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Activity.DeletedAt != nil {
				return m, func() tea.Msg { return RestoreActivityMsg{ID: i.Activity.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No activities yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Len returns the number of rows, deleted activities included.
func (m Model) Len() int {
	return len(m.list.Items())
}
