// Package roller ties the selection state machine to its collaborators.
//
// A Roller serializes transitions, feeds them the current activity pool and
// hands every state change to a write-behind worker. Transition results are
// returned before they are durable.
package roller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/riseroll/internal/logger"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/persist"
	"github.com/julianstephens/riseroll/internal/selection"
)

var log = logger.With("component", "roller")

// ActivitySource supplies the candidate pool.
type ActivitySource interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
}

// HistorySink records every drawn activity.
type HistorySink interface {
	AppendHistory(ctx context.Context, activity string, at time.Time) error
}

type Roller struct {
	mu         sync.Mutex
	machine    *selection.Machine
	adapter    *persist.Adapter
	activities ActivitySource
	history    HistorySink
	writer     *writeBehind
	loaded     bool
}

// New returns a Roller. history may be nil. Load must be called before any
// transition.
func New(machine *selection.Machine, adapter *persist.Adapter, activities ActivitySource, history HistorySink) *Roller {
	r := &Roller{
		machine:    machine,
		adapter:    adapter,
		activities: activities,
		history:    history,
	}
	r.writer = newWriteBehind(adapter.SaveErr, r.appendHistory)
	return r
}

func (r *Roller) appendHistory(ctx context.Context, activity string, at time.Time) error {
	if r.history == nil {
		return nil
	}
	return r.history.AppendHistory(ctx, activity, at)
}

// Load restores the persisted state. It blocks until the state is read.
func (r *Roller) Load(ctx context.Context) models.SelectionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.machine.Restore(r.adapter.Load(ctx))
	if r.machine.CheckReset() {
		r.persist(selection.Outcome{Changed: true})
	}
	r.loaded = true

	s := r.machine.State()
	log.Debug("Selection state loaded", "activity", s.SelectedActivity, "rerolls", s.RerollsLeft, "locked", s.IsLockedIn)
	return s
}

func (r *Roller) candidates(ctx context.Context) ([]string, error) {
	activities, err := r.activities.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return models.ActivityNames(activities), nil
}

// persist queues the current state and any drawn activity. Callers hold r.mu.
func (r *Roller) persist(out selection.Outcome) {
	if !out.Changed {
		return
	}
	state := r.machine.State()
	var entry *historyEntry
	if out.Picked {
		// History days follow the machine's location, not the process zone.
		entry = &historyEntry{activity: out.Activity, at: out.At.In(r.machine.Location())}
	}
	r.writer.enqueue(&state, entry)
}

func (r *Roller) checkLoaded() {
	if !r.loaded {
		log.Warn("Transition before state load; using defaults")
		r.loaded = true
	}
}

// Pick draws today's activity. The error reports only a failure to read the
// activity pool; an empty pool yields an Outcome with OK false.
func (r *Roller) Pick(ctx context.Context) (selection.Outcome, error) {
	names, err := r.candidates(ctx)
	if err != nil {
		return selection.Outcome{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLoaded()

	out := r.machine.Pick(names)
	r.persist(out)
	if out.Picked {
		log.Info("Picked activity", "activity", out.Activity)
	}
	return out, nil
}

// Reroll replaces today's activity and spends a reroll.
func (r *Roller) Reroll(ctx context.Context) (selection.Outcome, error) {
	names, err := r.candidates(ctx)
	if err != nil {
		return selection.Outcome{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLoaded()

	out := r.machine.Reroll(names)
	r.persist(out)
	if out.OK {
		log.Info("Rerolled activity", "activity", out.Activity, "rerolls_left", r.machine.State().RerollsLeft)
	}
	return out, nil
}

func (r *Roller) LockIn() selection.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLoaded()

	out := r.machine.LockIn()
	r.persist(out)
	if out.OK {
		log.Info("Locked in activity", "activity", out.Activity)
	}
	return out
}

// CheckReset applies the daily reset if its boundary has passed.
func (r *Roller) CheckReset() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset := r.machine.CheckReset()
	r.persist(selection.Outcome{Changed: reset})
	return reset
}

// Reset clears today's selection immediately.
func (r *Roller) Reset() selection.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkLoaded()

	out := r.machine.Reset()
	r.persist(out)
	log.Info("Selection reset")
	return out
}

// State returns the current state after applying any due reset.
func (r *Roller) State() models.SelectionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.persist(selection.Outcome{Changed: r.machine.CheckReset()})
	return r.machine.State()
}

func (r *Roller) MaxRerolls() int {
	return r.machine.MaxRerolls()
}

func (r *Roller) TimeUntilReset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.TimeUntilReset()
}

// Countdown renders TimeUntilReset for display.
func (r *Roller) Countdown() string {
	return selection.FormatCountdown(r.TimeUntilReset())
}

// Flush waits for queued writes to finish or ctx to expire.
func (r *Roller) Flush(ctx context.Context) error {
	return r.writer.flush(ctx)
}

// Close flushes queued writes and stops the worker.
func (r *Roller) Close(ctx context.Context) error {
	return r.writer.close(ctx)
}
