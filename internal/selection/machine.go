// Package selection implements the daily pick state machine.
//
// A Machine holds the selection state for one device and applies the pick,
// reroll, lock-in and reset transitions to it. It never touches storage:
// every transition returns an Outcome telling the caller whether the state
// must be persisted and whether a history entry is due.
//
// A Machine is not safe for concurrent use. Callers serialize access.
package selection

import (
	"time"

	"github.com/julianstephens/riseroll/internal/models"
)

// Outcome describes the result of a transition.
type Outcome struct {
	// Activity is the selection after the transition. It is empty when the
	// transition was rejected.
	Activity string
	// OK is false when a precondition failed and nothing happened.
	OK bool
	// Changed is true when the state differs from before the call, including
	// changes made by the boundary check. Changed states must be persisted.
	Changed bool
	// Picked is true when a new activity was drawn.
	Picked bool
	// At is the instant the transition was evaluated.
	At time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLocation sets the zone used for the daily boundary. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) { m.loc = loc }
}

// WithIndexSource replaces the random index source.
func WithIndexSource(src IndexSource) Option {
	return func(m *Machine) { m.rng = src }
}

type Machine struct {
	state      models.SelectionState
	maxRerolls int
	now        func() time.Time
	loc        *time.Location
	rng        IndexSource
}

// New returns a Machine in the default state.
func New(maxRerolls int, opts ...Option) *Machine {
	if maxRerolls < 0 {
		maxRerolls = 0
	}
	m := &Machine{
		state:      models.DefaultSelectionState(maxRerolls),
		maxRerolls: maxRerolls,
		now:        time.Now,
		loc:        time.Local,
		rng:        NewCryptoSource(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore replaces the current state, typically with one read from storage.
// Callers should run CheckReset afterwards.
func (m *Machine) Restore(s models.SelectionState) {
	m.state = s.Clone()
}

// State returns a copy of the current state.
func (m *Machine) State() models.SelectionState {
	return m.state.Clone()
}

func (m *Machine) MaxRerolls() int          { return m.maxRerolls }
func (m *Machine) Location() *time.Location { return m.loc }
func (m *Machine) Now() time.Time           { return m.now() }

// CheckReset clears the state if the reset boundary of the last pick has
// passed. It reports whether the state was reset.
func (m *Machine) CheckReset() bool {
	return m.checkReset(m.now())
}

func (m *Machine) checkReset(now time.Time) bool {
	next, reset := Expire(m.state, now, m.loc, m.maxRerolls)
	if reset {
		m.state = next
	}
	return reset
}

// Pick draws today's activity from candidates. Within the same day it is
// idempotent: the existing selection is returned and rerolls are untouched.
// Candidates must be non-empty names; an empty pool is a no-op.
func (m *Machine) Pick(candidates []string) Outcome {
	if len(candidates) == 0 {
		return Outcome{}
	}

	now := m.now()
	reset := m.checkReset(now)

	if m.state.LastRollDate != nil {
		return Outcome{
			Activity: m.state.SelectedActivity,
			OK:       true,
			Changed:  reset,
			At:       now,
		}
	}

	name := candidates[m.draw(len(candidates))]
	rolled := now
	m.state = models.SelectionState{
		SelectedActivity: name,
		RerollsLeft:      m.maxRerolls,
		LastRollDate:     &rolled,
		IsLockedIn:       false,
	}
	return Outcome{Activity: name, OK: true, Changed: true, Picked: true, At: now}
}

// Reroll replaces today's selection with a new draw and spends one reroll.
// The new draw may repeat the current activity. It is a no-op when no pick
// has been made, no rerolls are left, the pool is empty, or the selection is
// locked in. LastRollDate is not changed.
func (m *Machine) Reroll(candidates []string) Outcome {
	now := m.now()
	reset := m.checkReset(now)

	if m.state.RerollsLeft <= 0 || len(candidates) == 0 || m.state.IsLockedIn || !m.state.HasSelection() {
		return Outcome{Changed: reset, At: now}
	}

	name := candidates[m.draw(len(candidates))]
	m.state.SelectedActivity = name
	m.state.RerollsLeft--
	return Outcome{Activity: name, OK: true, Changed: true, Picked: true, At: now}
}

// LockIn commits to the current selection until the next reset. It requires
// a selection and at least one unused reroll.
func (m *Machine) LockIn() Outcome {
	now := m.now()
	reset := m.checkReset(now)

	if !m.state.HasSelection() || m.state.RerollsLeft <= 0 || m.state.IsLockedIn {
		return Outcome{Changed: reset, At: now}
	}

	m.state.IsLockedIn = true
	return Outcome{Activity: m.state.SelectedActivity, OK: true, Changed: true, At: now}
}

// Reset returns the state to defaults regardless of the boundary.
func (m *Machine) Reset() Outcome {
	now := m.now()
	def := models.DefaultSelectionState(m.maxRerolls)
	changed := !m.state.Equal(def)
	m.state = def
	return Outcome{OK: true, Changed: changed, At: now}
}

// TimeUntilReset returns the time left before a new pick is allowed.
func (m *Machine) TimeUntilReset() time.Duration {
	return TimeUntilReset(m.state, m.now(), m.loc)
}

func (m *Machine) draw(n int) int {
	idx := m.rng.Index(n)
	if idx < 0 || idx >= n {
		idx = ((idx % n) + n) % n
	}
	return idx
}
