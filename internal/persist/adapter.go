// Package persist maps the selection state onto settings records.
//
// Each field of models.SelectionState is stored as its own string record
// keyed by field name. Load tolerates missing keys, unparsable values and
// records left behind by a partially applied save.
package persist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/logger"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/selection"
	"github.com/julianstephens/riseroll/internal/storage"
)

// Store is the key/value record store the adapter reads and writes.
type Store interface {
	GetSetting(ctx context.Context, key string) (models.Setting, bool, error)
	InsertSetting(ctx context.Context, key, value string) error
	UpdateSetting(ctx context.Context, key, value string) error
}

// Upserter is implemented by stores that can write several records in one
// transaction. Save prefers it when available.
type Upserter interface {
	UpsertSettings(ctx context.Context, settings []models.Setting) error
}

type Option func(*Adapter)

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(a *Adapter) { a.loc = loc }
}

type Adapter struct {
	store      Store
	maxRerolls int
	now        func() time.Time
	loc        *time.Location
	log        *logger.Component
}

func New(store Store, maxRerolls int, opts ...Option) *Adapter {
	a := &Adapter{
		store:      store,
		maxRerolls: maxRerolls,
		now:        time.Now,
		loc:        time.Local,
		log:        logger.With("component", "persist"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load reads the persisted state, repairs inconsistencies and applies the
// daily reset. When the result differs from what was stored it is saved
// back before returning. Read failures fall back to defaults and are logged.
//
// Keys that fail to read are retried once. If any key still cannot be read
// the repaired state is returned but never written back, so a read fault
// cannot overwrite values that are still stored.
func (a *Adapter) Load(ctx context.Context) models.SelectionState {
	raw := make(map[string]string, len(constants.SelectionKeys))
	failed := a.read(ctx, constants.SelectionKeys, raw)
	if len(failed) > 0 {
		failed = a.read(ctx, failed, raw)
	}
	if len(failed) == len(constants.SelectionKeys) {
		a.log.Warn("Selection state unavailable, using defaults")
		return models.DefaultSelectionState(a.maxRerolls)
	}

	decoded := Decode(raw, a.maxRerolls)
	state, repaired := Reconcile(decoded, a.maxRerolls)
	if repaired {
		a.log.Warn("Repaired inconsistent selection state", "stored", decoded, "repaired", state)
	}

	state, expired := selection.Expire(state, a.now(), a.loc, a.maxRerolls)
	if expired {
		a.log.Debug("Stored selection passed its reset boundary")
	}

	if len(failed) > 0 {
		a.log.Warn("Selection state partially unreadable, not saving repairs", "keys", failed)
		return state
	}
	if repaired || expired {
		a.Save(ctx, state)
	}
	return state
}

// read fetches keys into raw and returns the keys that could not be read.
func (a *Adapter) read(ctx context.Context, keys []string, raw map[string]string) []string {
	var failed []string
	for _, key := range keys {
		setting, found, err := a.store.GetSetting(ctx, key)
		if err != nil {
			a.log.Error("Failed to read selection setting", "key", key, "error", err)
			failed = append(failed, key)
			continue
		}
		if found {
			raw[key] = setting.Value
		}
	}
	return failed
}

// Save writes every field of s. Errors are logged and dropped.
func (a *Adapter) Save(ctx context.Context, s models.SelectionState) {
	if err := a.SaveErr(ctx, s); err != nil {
		a.log.Error("Failed to save selection state", "error", err)
	}
}

// SaveErr writes every field of s and reports failures.
func (a *Adapter) SaveErr(ctx context.Context, s models.SelectionState) error {
	records := Encode(s)

	if u, ok := a.store.(Upserter); ok {
		return u.UpsertSettings(ctx, records)
	}

	var errs []error
	for _, r := range records {
		if err := a.put(ctx, r.Key, r.Value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// put updates key when a record exists and inserts it otherwise.
func (a *Adapter) put(ctx context.Context, key, value string) error {
	_, found, err := a.store.GetSetting(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check setting %s: %w", key, err)
	}
	if !found {
		return a.store.InsertSetting(ctx, key, value)
	}
	err = a.store.UpdateSetting(ctx, key, value)
	if errors.Is(err, storage.ErrNotFound) {
		// Removed between the check and the update.
		return a.store.InsertSetting(ctx, key, value)
	}
	return err
}

// Encode converts s into its settings records, in constants.SelectionKeys order.
func Encode(s models.SelectionState) []models.Setting {
	lastRoll := ""
	if s.LastRollDate != nil {
		lastRoll = storage.FormatTimestamp(*s.LastRollDate)
	}
	return []models.Setting{
		{Key: constants.SettingSelectedActivity, Value: s.SelectedActivity},
		{Key: constants.SettingRerollsLeft, Value: strconv.Itoa(s.RerollsLeft)},
		{Key: constants.SettingLastRollDate, Value: lastRoll},
		{Key: constants.SettingIsLockedIn, Value: strconv.FormatBool(s.IsLockedIn)},
	}
}

// Decode builds a state from raw record values. Missing keys and empty
// values take the field default; unparsable values are logged and treated
// the same way.
func Decode(raw map[string]string, maxRerolls int) models.SelectionState {
	s := models.DefaultSelectionState(maxRerolls)

	s.SelectedActivity = raw[constants.SettingSelectedActivity]

	if v := raw[constants.SettingRerollsLeft]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn("Ignoring invalid stored rerolls", "value", v)
		} else {
			s.RerollsLeft = n
		}
	}

	if v := raw[constants.SettingLastRollDate]; v != "" {
		t, err := storage.ParseTimestamp(v)
		if err != nil {
			logger.Warn("Ignoring invalid stored roll date", "value", v)
		} else {
			s.LastRollDate = &t
		}
	}

	if v := raw[constants.SettingIsLockedIn]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("Ignoring invalid stored lock flag", "value", v)
		} else {
			s.IsLockedIn = b
		}
	}

	return s
}

// Reconcile restores the state invariants: a selection needs a roll date,
// a roll date needs a selection, a lock needs a selection, and rerolls stay
// within [0, maxRerolls]. It reports whether anything changed.
func Reconcile(s models.SelectionState, maxRerolls int) (models.SelectionState, bool) {
	out := s.Clone()

	if out.SelectedActivity != "" && out.LastRollDate == nil {
		out.SelectedActivity = ""
	}
	if out.SelectedActivity == "" && out.LastRollDate != nil {
		out.LastRollDate = nil
	}
	if out.IsLockedIn && out.SelectedActivity == "" {
		out.IsLockedIn = false
	}
	if out.RerollsLeft < 0 {
		out.RerollsLeft = 0
	}
	if out.RerollsLeft > maxRerolls {
		out.RerollsLeft = maxRerolls
	}

	return out, !out.Equal(s)
}
