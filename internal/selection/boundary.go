package selection

import (
	"fmt"
	"time"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/models"
)

// ResetBoundary returns 00:01 in loc on the calendar day after last.
// The extra minute keeps a pick made right at midnight from surviving a
// clock that rounds down.
func ResetBoundary(last time.Time, loc *time.Location) time.Time {
	l := last.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day()+1, constants.ResetHour, constants.ResetMinute, 0, 0, loc)
}

// Expire returns the default state when now has reached the reset boundary of s.
// The second result reports whether s was reset. A state without a last roll
// date never expires.
func Expire(s models.SelectionState, now time.Time, loc *time.Location, maxRerolls int) (models.SelectionState, bool) {
	if s.LastRollDate == nil {
		return s, false
	}
	if now.Before(ResetBoundary(*s.LastRollDate, loc)) {
		return s, false
	}
	return models.DefaultSelectionState(maxRerolls), true
}

// TimeUntilReset returns the time left before the next reset boundary, or zero
// when a new pick is already allowed.
func TimeUntilReset(s models.SelectionState, now time.Time, loc *time.Location) time.Duration {
	if s.LastRollDate == nil {
		return 0
	}
	d := ResetBoundary(*s.LastRollDate, loc).Sub(now)
	if d <= 0 {
		return 0
	}
	return d
}

// FormatCountdown renders a TimeUntilReset result for display.
func FormatCountdown(d time.Duration) string {
	if d <= 0 {
		return constants.ReadyToRoll
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("Resets in %dh %dm", hours, minutes)
}
