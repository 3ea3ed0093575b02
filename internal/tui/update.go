package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/riseroll/internal/storage"
	"github.com/julianstephens/riseroll/internal/tui/components/activitylist"
	"github.com/julianstephens/riseroll/internal/tui/components/today"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Leave room for tabs, message and help.
		m.today.SetSize(msg.Width, msg.Height-4)
		m.activities.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case today.TickMsg:
		m.refreshToday()
		return m, today.Tick()
	}

	switch m.state {
	case StateAddActivity, StateEditActivity:
		return m, m.updateForm(msg)
	case StateConfirmDelete:
		return m, m.updateConfirmDelete(msg)
	}

	if handled, cmd := m.handleActivityMessages(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !(m.state == StateActivities && m.activities.Filtering()) {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.switchTab((m.state + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.switchTab((m.state - 1 + tabCount) % tabCount)
			return m, nil
		}

		if m.state == StateToday {
			switch {
			case key.Matches(msg, m.keys.Pick):
				m.pick()
			case key.Matches(msg, m.keys.Reroll):
				m.reroll()
			case key.Matches(msg, m.keys.LockIn):
				m.lockIn()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.state == StateActivities {
		m.activities, cmd = m.activities.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchTab(s SessionState) {
	m.state = s
	m.message = ""
	switch s {
	case StateToday:
		m.refreshToday()
	case StateHistory:
		m.refreshHistory()
	}
}

func (m *Model) handleActivityMessages(msg tea.Msg) (bool, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case activitylist.AddActivityMsg:
		m.activityForm = &ActivityFormModel{}
		m.form = newActivityForm(m.activityForm, "New activity")
		m.state = StateAddActivity
		return true, m.form.Init()

	case activitylist.EditActivityMsg:
		m.activityForm = &ActivityFormModel{Name: msg.Activity.Name}
		m.editingID = msg.Activity.ID
		m.form = newActivityForm(m.activityForm, "Rename activity")
		m.state = StateEditActivity
		return true, m.form.Init()

	case activitylist.DeleteActivityMsg:
		m.deleteID = msg.ID
		m.state = StateConfirmDelete
		return true, nil

	case activitylist.RestoreActivityMsg:
		if a, err := m.store.RestoreActivity(ctx, msg.ID); err != nil {
			m.message = activityError(err)
		} else {
			m.message = "Restored " + a.Name
		}
		m.refreshActivities()
		return true, nil

	case activitylist.UndoDeleteMsg:
		if a, err := m.store.UndoDeleteActivity(ctx); err != nil {
			m.message = activityError(err)
		} else {
			m.message = "Restored " + a.Name
		}
		m.refreshActivities()
		return true, nil
	}
	return false, nil
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateActivities
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		ctx := context.Background()
		var err error
		if m.state == StateAddActivity {
			_, err = m.store.AddActivity(ctx, m.activityForm.Name)
		} else {
			_, err = m.store.RenameActivity(ctx, m.editingID, m.activityForm.Name)
		}
		if err != nil {
			m.message = activityError(err)
		} else {
			m.message = ""
			m.refreshActivities()
		}
		m.editingID = ""
		m.state = StateActivities
	case huh.StateAborted:
		m.editingID = ""
		m.state = StateActivities
	}
	return cmd
}

func (m *Model) updateConfirmDelete(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		if a, err := m.store.DeleteActivity(context.Background(), m.deleteID); err != nil {
			m.message = activityError(err)
		} else {
			m.message = "Deleted " + a.Name + " (press u to undo)"
			m.refreshActivities()
		}
		m.deleteID = ""
		m.state = StateActivities
	case "n", "N", "esc":
		m.deleteID = ""
		m.state = StateActivities
	}
	return nil
}

func activityError(err error) string {
	switch {
	case errors.Is(err, storage.ErrDuplicateActivity):
		return "⚠ An activity with that name already exists"
	case errors.Is(err, storage.ErrEmptyName):
		return "⚠ Activity name cannot be empty"
	case errors.Is(err, storage.ErrNothingToRestore):
		return "Nothing to undo"
	default:
		return "⚠ " + err.Error()
	}
}
