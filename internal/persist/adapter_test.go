package persist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
	"github.com/julianstephens/riseroll/internal/storage"
	"github.com/julianstephens/riseroll/internal/storage/sqlite"
)

// memStore implements Store without UpsertSettings so Save takes the
// check-then-write path.
type memStore struct {
	values  map[string]string
	getErr  error
	// keyErrs makes GetSetting fail for a key that many times.
	keyErrs map[string]int
	putErr  error
	inserts int
	updates int
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) GetSetting(_ context.Context, key string) (models.Setting, bool, error) {
	if m.getErr != nil {
		return models.Setting{}, false, m.getErr
	}
	if m.keyErrs[key] > 0 {
		m.keyErrs[key]--
		return models.Setting{}, false, errors.New("read " + key + ": i/o timeout")
	}
	v, ok := m.values[key]
	if !ok {
		return models.Setting{}, false, nil
	}
	return models.Setting{Key: key, Value: v}, true, nil
}

func (m *memStore) InsertSetting(_ context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	if _, ok := m.values[key]; ok {
		return errors.New("duplicate key " + key)
	}
	m.inserts++
	m.values[key] = value
	return nil
}

func (m *memStore) UpdateSetting(_ context.Context, key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	if _, ok := m.values[key]; !ok {
		return storage.ErrNotFound
	}
	m.updates++
	m.values[key] = value
	return nil
}

var testLoc = time.FixedZone("test", -5*60*60)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRoundTripWithoutUpsert(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 8, 30, 0, 123456789, testLoc)
	store := newMemStore()
	a := New(store, 2, WithClock(fixedNow(now.Add(time.Hour))), WithLocation(testLoc))

	want := models.SelectionState{
		SelectedActivity: "Read",
		RerollsLeft:      1,
		LastRollDate:     &now,
		IsLockedIn:       true,
	}
	require.NoError(t, a.SaveErr(ctx, want))
	assert.Equal(t, 4, store.inserts)

	require.NoError(t, a.SaveErr(ctx, want))
	assert.Equal(t, 4, store.inserts, "second save must update, not insert")
	assert.Equal(t, 4, store.updates)

	got := a.Load(ctx)
	assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)
}

func TestRoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 6, 2, 23, 59, 59, 999, testLoc)
	a := New(store, 2, WithClock(fixedNow(now)), WithLocation(testLoc))

	want := models.SelectionState{SelectedActivity: "Run", RerollsLeft: 2, LastRollDate: &now}
	require.NoError(t, a.SaveErr(ctx, want))
	require.NoError(t, a.SaveErr(ctx, want))

	got := a.Load(ctx)
	assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)

	all, err := store.GetAllSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(constants.SelectionKeys))
}

func TestLoadMissingKeysUsesDefaults(t *testing.T) {
	store := newMemStore()
	a := New(store, 3)

	got := a.Load(context.Background())
	assert.Equal(t, models.DefaultSelectionState(3), got)
	assert.Zero(t, store.inserts, "a clean load must not write")
}

func TestLoadEmptyValuesUseDefaults(t *testing.T) {
	store := newMemStore()
	for _, k := range constants.SelectionKeys {
		store.values[k] = ""
	}
	a := New(store, 2)

	got := a.Load(context.Background())
	assert.Equal(t, models.DefaultSelectionState(2), got)
}

func TestLoadStaleStateResetsAndSaves(t *testing.T) {
	store := newMemStore()
	twoDaysAgo := time.Date(2025, 6, 1, 21, 0, 0, 0, testLoc)
	store.values = map[string]string{
		constants.SettingSelectedActivity: "Swim",
		constants.SettingRerollsLeft:      "0",
		constants.SettingLastRollDate:     storage.FormatTimestamp(twoDaysAgo),
		constants.SettingIsLockedIn:       "true",
	}
	now := twoDaysAgo.Add(48 * time.Hour)
	a := New(store, 2, WithClock(fixedNow(now)), WithLocation(testLoc))

	got := a.Load(context.Background())
	assert.Equal(t, models.DefaultSelectionState(2), got)

	assert.Equal(t, "", store.values[constants.SettingSelectedActivity])
	assert.Equal(t, "2", store.values[constants.SettingRerollsLeft])
	assert.Equal(t, "", store.values[constants.SettingLastRollDate])
	assert.Equal(t, "false", store.values[constants.SettingIsLockedIn])
}

func TestLoadBeforeBoundaryKeepsState(t *testing.T) {
	store := newMemStore()
	rolled := time.Date(2025, 6, 1, 21, 0, 0, 0, testLoc)
	store.values = map[string]string{
		constants.SettingSelectedActivity: "Swim",
		constants.SettingRerollsLeft:      "1",
		constants.SettingLastRollDate:     storage.FormatTimestamp(rolled),
		constants.SettingIsLockedIn:       "false",
	}
	// 00:00:30 on the next day is still before 00:01.
	now := time.Date(2025, 6, 2, 0, 0, 30, 0, testLoc)
	a := New(store, 2, WithClock(fixedNow(now)), WithLocation(testLoc))

	got := a.Load(context.Background())
	assert.Equal(t, "Swim", got.SelectedActivity)
	assert.Equal(t, 1, got.RerollsLeft)
	assert.Zero(t, store.updates)
}

func TestLoadRepairsPartialWrite(t *testing.T) {
	store := newMemStore()
	store.values = map[string]string{
		constants.SettingSelectedActivity: "Cook",
		constants.SettingRerollsLeft:      "7",
		constants.SettingIsLockedIn:       "true",
	}
	a := New(store, 2)

	got := a.Load(context.Background())
	assert.Equal(t, models.DefaultSelectionState(2), got)
	assert.Equal(t, "", store.values[constants.SettingSelectedActivity])
	assert.Equal(t, "false", store.values[constants.SettingIsLockedIn])
	assert.Equal(t, "2", store.values[constants.SettingRerollsLeft])
}

func TestLoadTotalFailureFallsBack(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("disk on fire")
	a := New(store, 2)

	got := a.Load(context.Background())
	assert.Equal(t, models.DefaultSelectionState(2), got)
	assert.Zero(t, store.inserts)
	assert.Zero(t, store.updates)
}

func lockedToday(store *memStore, rolled time.Time) {
	store.values = map[string]string{
		constants.SettingSelectedActivity: "Run",
		constants.SettingRerollsLeft:      "1",
		constants.SettingLastRollDate:     storage.FormatTimestamp(rolled),
		constants.SettingIsLockedIn:       "true",
	}
}

func snapshot(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func TestLoadRetriesTransientKeyFault(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, testLoc)
	rolled := now.Add(-time.Hour)
	store := newMemStore()
	lockedToday(store, rolled)
	store.keyErrs = map[string]int{constants.SettingLastRollDate: 1}
	before := snapshot(store.values)
	a := New(store, 2, WithClock(fixedNow(now)), WithLocation(testLoc))

	got := a.Load(context.Background())

	want := models.SelectionState{SelectedActivity: "Run", RerollsLeft: 1, LastRollDate: &rolled, IsLockedIn: true}
	assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)
	assert.Equal(t, before, store.values)
	assert.Zero(t, store.inserts)
	assert.Zero(t, store.updates)
}

func TestLoadPartialFaultNeverWritesBack(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, testLoc)
	tests := []struct {
		name string
		key  string
	}{
		{name: "roll date", key: constants.SettingLastRollDate},
		{name: "selection", key: constants.SettingSelectedActivity},
		{name: "rerolls", key: constants.SettingRerollsLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			lockedToday(store, now.Add(-time.Hour))
			store.keyErrs = map[string]int{tt.key: 1000}
			before := snapshot(store.values)
			a := New(store, 2, WithClock(fixedNow(now)), WithLocation(testLoc))

			a.Load(context.Background())

			assert.Equal(t, before, store.values, "a faulted load must leave the store untouched")
			assert.Zero(t, store.inserts)
			assert.Zero(t, store.updates)
		})
	}
}

func TestLoadPartialFaultSkipsExpirySave(t *testing.T) {
	now := time.Date(2025, 6, 4, 9, 0, 0, 0, testLoc)
	store := newMemStore()
	lockedToday(store, now.Add(-48*time.Hour))
	store.keyErrs = map[string]int{constants.SettingIsLockedIn: 1000}
	before := snapshot(store.values)
	a := New(store, 2, WithClock(fixedNow(now)), WithLocation(testLoc))

	got := a.Load(context.Background())

	assert.Equal(t, models.DefaultSelectionState(2), got)
	assert.Equal(t, before, store.values)
}

func TestSaveSwallowsErrors(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("read-only")
	a := New(store, 2)

	assert.NotPanics(t, func() { a.Save(context.Background(), models.DefaultSelectionState(2)) })
	assert.Error(t, a.SaveErr(context.Background(), models.DefaultSelectionState(2)))
}

func TestDecodeInvalidValues(t *testing.T) {
	got := Decode(map[string]string{
		constants.SettingSelectedActivity: "Walk",
		constants.SettingRerollsLeft:      "two",
		constants.SettingLastRollDate:     "yesterday",
		constants.SettingIsLockedIn:       "maybe",
	}, 2)

	assert.Equal(t, "Walk", got.SelectedActivity)
	assert.Equal(t, 2, got.RerollsLeft)
	assert.Nil(t, got.LastRollDate)
	assert.False(t, got.IsLockedIn)
}

func TestDecodeZeroRerolls(t *testing.T) {
	got := Decode(map[string]string{constants.SettingRerollsLeft: "0"}, 2)
	assert.Equal(t, 0, got.RerollsLeft)
}

func TestReconcile(t *testing.T) {
	rolled := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      models.SelectionState
		want    models.SelectionState
		changed bool
	}{
		{
			name: "consistent",
			in:   models.SelectionState{SelectedActivity: "Run", RerollsLeft: 1, LastRollDate: &rolled, IsLockedIn: true},
			want: models.SelectionState{SelectedActivity: "Run", RerollsLeft: 1, LastRollDate: &rolled, IsLockedIn: true},
		},
		{
			name:    "date without selection",
			in:      models.SelectionState{RerollsLeft: 2, LastRollDate: &rolled},
			want:    models.SelectionState{RerollsLeft: 2},
			changed: true,
		},
		{
			name:    "negative rerolls",
			in:      models.SelectionState{RerollsLeft: -1},
			want:    models.SelectionState{RerollsLeft: 0},
			changed: true,
		},
		{
			name:    "lock without selection",
			in:      models.SelectionState{RerollsLeft: 2, IsLockedIn: true},
			want:    models.SelectionState{RerollsLeft: 2},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Reconcile(tt.in, 2)
			assert.Equal(t, tt.changed, changed)
			assert.True(t, tt.want.Equal(got), "want %+v, got %+v", tt.want, got)
		})
	}
}
