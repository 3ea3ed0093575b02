package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/riseroll/internal/logger"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/roller"
	"github.com/julianstephens/riseroll/internal/tui/components/activitylist"
	"github.com/julianstephens/riseroll/internal/tui/components/today"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateActivities
	StateHistory
	StateAddActivity
	StateEditActivity
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

// Store is the part of the storage layer the TUI edits directly.
type Store interface {
	AddActivity(ctx context.Context, name string) (models.Activity, error)
	ListActivities(ctx context.Context) ([]models.Activity, error)
	ListDeletedActivities(ctx context.Context) ([]models.Activity, error)
	RenameActivity(ctx context.Context, id, name string) (models.Activity, error)
	DeleteActivity(ctx context.Context, id string) (models.Activity, error)
	RestoreActivity(ctx context.Context, id string) (models.Activity, error)
	UndoDeleteActivity(ctx context.Context) (models.Activity, error)
	ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

type ActivityFormModel struct {
	Name string
}

type Model struct {
	roller       *roller.Roller
	store        Store
	state        SessionState
	keys         KeyMap
	help         help.Model
	today        today.Model
	activities   activitylist.Model
	history      []models.HistoryEntry
	form         *huh.Form
	activityForm *ActivityFormModel
	editingID    string
	deleteID     string
	message      string
	quitting     bool
	width        int
	height       int
}

func NewModel(r *roller.Roller, store Store) Model {
	m := Model{
		roller:     r,
		store:      store,
		state:      StateToday,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		today:      today.New(r.State(), r.MaxRerolls(), r.Countdown()),
		activities: activitylist.New(nil, 0, 0),
	}
	m.refreshActivities()
	m.refreshHistory()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateToday {
		keys = append(keys, m.keys.Pick, m.keys.Reroll, m.keys.LockIn)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	if m.state == StateToday {
		return [][]key.Binding{global, {m.keys.Pick, m.keys.Reroll, m.keys.LockIn}}
	}
	return [][]key.Binding{global}
}

func (m Model) Init() tea.Cmd {
	return today.Tick()
}

func (m *Model) refreshToday() {
	m.today.Set(m.roller.State(), m.roller.Countdown())
}

func (m *Model) refreshActivities() {
	ctx := context.Background()
	live, err := m.store.ListActivities(ctx)
	if err != nil {
		logger.Warn("Failed to list activities", "error", err)
		m.message = "⚠ Activities unavailable"
		return
	}
	deleted, err := m.store.ListDeletedActivities(ctx)
	if err != nil {
		logger.Warn("Failed to list deleted activities", "error", err)
	}
	m.activities.SetActivities(live, deleted)
}

// refreshHistory waits briefly for queued writes so a fresh pick shows up.
func (m *Model) refreshHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.roller.Flush(ctx); err != nil {
		logger.Debug("History refresh without flush", "error", err)
	}
	entries, err := m.store.ListHistory(context.Background(), 0)
	if err != nil {
		logger.Warn("Failed to list history", "error", err)
		return
	}
	m.history = entries
}

func (m *Model) pick() {
	out, err := m.roller.Pick(context.Background())
	switch {
	case err != nil:
		m.message = fmt.Sprintf("⚠ %v", err)
	case !out.OK:
		m.message = "No activities yet. Add one on the Activities tab."
	case out.Picked:
		m.message = "🎲 Picked " + out.Activity
	default:
		m.message = "Already picked today"
	}
	m.afterTransition()
}

func (m *Model) reroll() {
	out, err := m.roller.Reroll(context.Background())
	switch {
	case err != nil:
		m.message = fmt.Sprintf("⚠ %v", err)
	case out.OK:
		m.message = "🎲 Rerolled to " + out.Activity
	default:
		m.message = rerollRefusal(m.roller.State())
	}
	m.afterTransition()
}

func rerollRefusal(s models.SelectionState) string {
	switch {
	case !s.HasSelection():
		return "Pick first"
	case s.IsLockedIn:
		return "Locked in for today"
	case s.RerollsLeft <= 0:
		return "No rerolls left"
	default:
		return "No activities to reroll from"
	}
}

func (m *Model) lockIn() {
	if out := m.roller.LockIn(); out.OK {
		m.message = "🔒 Locked in " + out.Activity
	} else {
		m.message = "Nothing to lock in"
	}
	m.afterTransition()
}

func (m *Model) afterTransition() {
	m.refreshToday()
}

func newActivityForm(fm *ActivityFormModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("activity name cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
