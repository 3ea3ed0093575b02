package models

import "time"

// SelectionState is the daily pick state for the device.
type SelectionState struct {
	SelectedActivity string     `json:"selected_activity"` // empty when nothing is picked
	RerollsLeft      int        `json:"rerolls_left"`
	LastRollDate     *time.Time `json:"last_roll_date,omitempty"`
	IsLockedIn       bool       `json:"is_locked_in"`
}

// DefaultSelectionState returns the state of a fresh cycle.
func DefaultSelectionState(maxRerolls int) SelectionState {
	return SelectionState{RerollsLeft: maxRerolls}
}

// HasSelection reports whether an activity has been picked this cycle.
func (s SelectionState) HasSelection() bool {
	return s.SelectedActivity != ""
}

// Equal compares two states, treating LastRollDate by instant.
func (s SelectionState) Equal(o SelectionState) bool {
	if s.SelectedActivity != o.SelectedActivity || s.RerollsLeft != o.RerollsLeft || s.IsLockedIn != o.IsLockedIn {
		return false
	}
	if s.LastRollDate == nil || o.LastRollDate == nil {
		return s.LastRollDate == nil && o.LastRollDate == nil
	}
	return s.LastRollDate.Equal(*o.LastRollDate)
}

// Clone returns a copy that shares no pointers with s.
func (s SelectionState) Clone() SelectionState {
	c := s
	if s.LastRollDate != nil {
		t := *s.LastRollDate
		c.LastRollDate = &t
	}
	return c
}

// Setting is a single persisted key/value record
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
